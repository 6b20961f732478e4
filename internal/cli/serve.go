package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/spf13/cobra"

	"github.com/Abhishek8211/energyiq/internal/ai"
	"github.com/Abhishek8211/energyiq/internal/calc"
	"github.com/Abhishek8211/energyiq/internal/config"
	"github.com/Abhishek8211/energyiq/internal/device"
	"github.com/Abhishek8211/energyiq/internal/history"
	"github.com/Abhishek8211/energyiq/internal/rates"
	"github.com/Abhishek8211/energyiq/internal/tips"
)

const (
	defaultServePort = 9000
	aiRequestTimeout = 45 * time.Second
)

// NewServeCmd creates the serve command, exposing the calculator over HTTP.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "listen port (default $PORT or 9000)")
	cmd.Flags().Bool("ephemeral", false, "keep history in memory only")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := config.Global()

	port, _ := cmd.Flags().GetInt("port")
	if port == 0 {
		port = config.ParsePort(os.Getenv("PORT"), defaultServePort)
	}

	var store history.Store
	if ephemeral, _ := cmd.Flags().GetBool("ephemeral"); ephemeral {
		store = history.NewMemoryStore(cfg.History.MaxEntries)
	} else {
		fs, err := history.NewFileStore(cfg.History.Path, cfg.History.MaxEntries)
		if err != nil {
			return err
		}
		store = fs
	}

	client, _ := ai.NewClientFromEnv()
	app := newServerApp(serverDeps{
		store: store,
		ai:    ai.NewService(client),
	})

	logger.Info().Int("port", port).Msg("http api listening")
	return app.Listen(fmt.Sprintf(":%d", port))
}

// serverDeps carries the dependencies of the HTTP handlers.
type serverDeps struct {
	store history.Store
	ai    *ai.Service
}

// newServerApp builds the fiber application with all API routes.
func newServerApp(deps serverDeps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "energyiq",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))

	api := app.Group("/api")
	api.Get("/electricity-rate", handleRate)
	api.Get("/electricity-rate/all", handleRateAll)
	api.Post("/calculate", deps.handleCalculate)
	api.Get("/history", deps.handleHistoryList)
	api.Delete("/history/:id", deps.handleHistoryRemove)
	api.Delete("/history", deps.handleHistoryClear)
	api.Get("/energy-tips", handleEnergyTips)
	api.Post("/gemini-tips", deps.handleAITips)
	api.Post("/gemini-chat", deps.handleAIChat)

	return app
}

func handleRate(c *fiber.Ctx) error {
	tariff, found := rates.Lookup(c.Query("country"))
	source := "static"
	if !found {
		source = "fallback"
	}
	return c.JSON(fiber.Map{
		"country":      tariff.Country,
		"rate_per_kwh": tariff.RatePerKwh,
		"currency":     tariff.Currency,
		"last_updated": rates.LastUpdated(),
		"source":       source,
	})
}

func handleRateAll(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"rates":        rates.All(),
		"last_updated": rates.LastUpdated(),
	})
}

// calculateRequest is the body of POST /api/calculate and /api/gemini-tips.
type calculateRequest struct {
	Devices []struct {
		Type        string  `json:"type"`
		Quantity    int     `json:"quantity"`
		Wattage     int     `json:"wattage"`
		HoursPerDay float64 `json:"hours_per_day"`
	} `json:"devices"`
	Country string `json:"country"`
}

// toResult validates the request with the same bounds as the dialogue
// and computes the calculation.
func (r calculateRequest) toResult() (calc.Result, error) {
	if len(r.Devices) == 0 {
		return calc.Result{}, errors.New("devices cannot be empty")
	}
	if len(r.Devices) > 50 {
		return calc.Result{}, errors.New("too many devices (max 50)")
	}

	devices := make([]device.Device, 0, len(r.Devices))
	for i, in := range r.Devices {
		t, ok := device.ParseType(in.Type)
		if !ok {
			return calc.Result{}, fmt.Errorf("devices[%d]: unknown type %q", i, in.Type)
		}
		if in.Quantity < device.MinQuantity || in.Quantity > device.MaxQuantity {
			return calc.Result{}, fmt.Errorf("devices[%d]: quantity must be %d-%d", i, device.MinQuantity, device.MaxQuantity)
		}
		wattage := in.Wattage
		if wattage == 0 {
			wattage = t.DefaultWattage()
		}
		if wattage < device.MinWattage || wattage > device.MaxWattage {
			return calc.Result{}, fmt.Errorf("devices[%d]: wattage must be %d-%d", i, device.MinWattage, device.MaxWattage)
		}
		if in.HoursPerDay < device.MinHoursPerDay || in.HoursPerDay > device.MaxHoursPerDay {
			return calc.Result{}, fmt.Errorf("devices[%d]: hours_per_day must be between 1 minute and 24 hours", i)
		}
		devices = append(devices, device.New(fmt.Sprintf("dev-%d", i+1), t, in.Quantity, wattage, in.HoursPerDay))
	}

	tariff, _ := rates.Lookup(r.Country)
	return calc.Compute(devices, tariff.RatePerKwh, tariff.Currency, tariff.Country), nil
}

func (d serverDeps) handleCalculate(c *fiber.Ctx) error {
	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := req.toResult()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if d.store != nil {
		if appendErr := d.store.Append(result); appendErr != nil {
			logger.Warn().Err(appendErr).Msg("failed to persist calculation")
		}
	}
	return c.JSON(result)
}

func (d serverDeps) handleHistoryList(c *fiber.Ctx) error {
	entries, err := d.store.List()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if entries == nil {
		entries = []calc.Result{}
	}
	return c.JSON(fiber.Map{"entries": entries})
}

func (d serverDeps) handleHistoryRemove(c *fiber.Ctx) error {
	err := d.store.Remove(c.Params("id"))
	switch {
	case err == nil:
		return c.SendStatus(fiber.StatusNoContent)
	case errors.Is(err, history.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
}

func (d serverDeps) handleHistoryClear(c *fiber.Ctx) error {
	if err := d.store.Clear(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func handleEnergyTips(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tips": tips.Random()})
}

func (d serverDeps) handleAITips(c *fiber.Ctx) error {
	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := req.toResult()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	ctx, cancel := contextWithTimeout(c, aiRequestTimeout)
	defer cancel()
	return c.JSON(d.ai.Tips(ctx, result))
}

func contextWithTimeout(c *fiber.Ctx, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context(), d)
}

type chatRequest struct {
	Question string `json:"question"`
}

func (d serverDeps) handleAIChat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	ctx, cancel := contextWithTimeout(c, aiRequestTimeout)
	defer cancel()

	answer, source, err := d.ai.Ask(ctx, req.Question)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"answer": answer, "source": source})
}
