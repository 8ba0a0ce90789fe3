package server

import (
	"errors"

	"tokenhealth/internal/aggregator"
	"tokenhealth/internal/models"
	"tokenhealth/internal/resolver"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type resolveRequest struct {
	Token string `json:"token"`
}

type searchRequest struct {
	Query string `json:"query"`
}

type metricsRequest struct {
	Token        string `json:"token"`
	Address      string `json:"address"`
	Blockchain   string `json:"blockchain"`
	Twitter      string `json:"twitter"`
	Github       string `json:"github"`
	ForceRefresh bool   `json:"forceRefresh"`
	Mode         string `json:"mode"`
	UserID       string `json:"userId"`
}

type tokenomicsRequest struct {
	ContractAddress string `json:"contractAddress"`
}

// errorResponse maps the error taxonomy onto HTTP statuses.
func errorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrValidation):
		status = fiber.StatusBadRequest
	case errors.Is(err, models.ErrTokenNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, models.ErrQuotaExceeded):
		status = fiber.StatusTooManyRequests
	case errors.Is(err, models.ErrUpstream):
		status = fiber.StatusBadGateway
	case errors.Is(err, models.ErrConnectivity):
		status = fiber.StatusServiceUnavailable
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func (s *Server) resolveToken(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	resolved, err := s.cfg.Resolver.Resolve(c.UserContext(), req.Token)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(resolved)
}

func (s *Server) searchTokens(c *fiber.Ctx) error {
	var req searchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	results, err := s.cfg.Resolver.Search(c.UserContext(), req.Query)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}

func (s *Server) tokenMetrics(c *fiber.Ctx) error {
	var req metricsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	now := s.now()
	if err := s.cfg.Quota.Check(c.UserContext(), req.UserID, now); err != nil {
		if errors.Is(err, models.ErrQuotaExceeded) {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      err.Error(),
				"dailyLimit": s.cfg.Quota.DailyLimit(req.UserID),
			})
		}
		return errorResponse(c, err)
	}

	record, err := s.cfg.Metrics.GetMetrics(c.UserContext(), aggregator.Request{
		Token:        req.Token,
		Address:      req.Address,
		Blockchain:   req.Blockchain,
		Twitter:      req.Twitter,
		Github:       req.Github,
		ForceRefresh: req.ForceRefresh,
		Mode:         req.Mode,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	// Scan history is recorded off the request path.
	s.cfg.Recorder.Record(&models.ScanRecord{
		ID:           uuid.New().String(),
		TokenID:      record.TokenID,
		TokenSymbol:  record.Symbol,
		TokenName:    record.Name,
		TokenAddress: record.ContractAddress,
		HealthScore:  record.HealthScore,
		Scores:       record.Scores,
		UserID:       req.UserID,
		CreatedAt:    now,
	})

	return c.JSON(fiber.Map{"metrics": record})
}

func (s *Server) tokenTokenomics(c *fiber.Ctx) error {
	var req tokenomicsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	address := resolver.NormalizeIdentifier(req.ContractAddress)
	if !resolver.IsContractAddress(address) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "contractAddress must be a 0x-prefixed 40-hex-character address",
		})
	}

	record, err := s.cfg.Metrics.GetMetrics(c.UserContext(), aggregator.Request{
		Token: address,
		Mode:  "tokenomics-only",
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"data":   record,
		"cached": record.FromCache,
	})
}

func (s *Server) recentScans(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	scans, err := s.cfg.Scans.RecentScans(c.UserContext(), limit)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"scans": scans})
}
