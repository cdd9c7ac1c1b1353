package httpapi

import (
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-notifier/internal/scheduler"
	"github.com/i474232898/weather-notifier/internal/store"
	"github.com/i474232898/weather-notifier/internal/weather"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	err := v.RegisterValidation("dataset", func(fl validator.FieldLevel) bool {
		return weather.KnownDataset(fl.Field().String())
	})
	if err != nil {
		panic(err)
	}
	return v
}

// DatasetStore is the read side of the dataset store.
type DatasetStore interface {
	GetLatest(name weather.DatasetName) (weather.Dataset, error)
	List() []weather.Dataset
	RecentCycles() []store.CycleSummary
	State() scheduler.State
}

// Trigger starts an out-of-band fetch cycle.
type Trigger interface {
	TriggerNow() error
}

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Store    DatasetStore
	Trigger  Trigger
	Provider string
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	v1 := app.Group("/api/v1")

	v1.Get("/status", func(c *fiber.Ctx) error {
		state := deps.Store.State()
		return c.JSON(fiber.Map{
			"provider": deps.Provider,
			"loaded":   state.HasEverSucceeded,
			"cycles":   state.Cycles,
			"recent":   deps.Store.RecentCycles(),
		})
	})

	v1.Get("/datasets", func(c *fiber.Ctx) error {
		latest := deps.Store.List()
		out := make([]datasetSummary, 0, len(latest))
		for _, ds := range latest {
			out = append(out, datasetSummary{Name: ds.Name, CycleID: ds.CycleID, FetchedAt: ds.FetchedAt})
		}
		return c.JSON(fiber.Map{"datasets": out})
	})

	v1.Get("/datasets/:name", func(c *fiber.Ctx) error {
		req := datasetParams{Name: c.Params("name")}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "unknown dataset "+req.Name)
		}

		ds, err := deps.Store.GetLatest(weather.DatasetName(req.Name))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "dataset has not been received yet")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read dataset")
		}
		return c.JSON(ds)
	})

	v1.Post("/refresh", func(c *fiber.Ctx) error {
		switch err := deps.Trigger.TriggerNow(); {
		case err == nil:
			return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "started"})
		case errors.Is(err, scheduler.ErrCycleInFlight):
			return fiber.NewError(fiber.StatusConflict, err.Error())
		case errors.Is(err, scheduler.ErrStopped):
			return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
		default:
			return fiber.NewError(fiber.StatusInternalServerError, "failed to start refresh")
		}
	})
}

// datasetSummary lists a dataset without its payload.
type datasetSummary struct {
	Name      weather.DatasetName `json:"name"`
	CycleID   string              `json:"cycleId"`
	FetchedAt time.Time           `json:"fetchedAt"`
}

// datasetParams holds the path parameters of the dataset endpoint.
type datasetParams struct {
	Name string `validate:"required,dataset"`
}
