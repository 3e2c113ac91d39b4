package httpapi

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/horizon-colors/internal/colors"
)

var validate = validator.New()

// Updater starts a background update run.
type Updater interface {
	Trigger() (string, error)
	Running() bool
}

// Options holds the per-deployment settings the routes need.
type Options struct {
	RecentDays      int
	Timezone        string
	IntervalMinutes int
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, resolver *colors.Resolver, updater Updater, opts Options, logger *zap.Logger) {
	logger = logger.Named("http")
	if opts.RecentDays <= 0 {
		opts.RecentDays = 30
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":          "ok",
			"service":         "horizon-colors",
			"updateRunning":   updater.Running(),
			"timezone":        opts.Timezone,
			"intervalMinutes": opts.IntervalMinutes,
		})
	})

	app.Get("/api", func(c *fiber.Ctx) error {
		var q readingQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := resolver.Resolve(colors.Query{Date: q.Date, Time: q.Time})
		if err != nil {
			return toFiberError(logger, err)
		}
		if res.Day != nil {
			return c.JSON(res.Day)
		}
		return c.JSON(res.Reading)
	})

	app.Get("/api/available-dates", func(c *fiber.Ctx) error {
		dates, err := resolver.AvailableDates()
		if err != nil {
			return toFiberError(logger, err)
		}
		return c.JSON(dates)
	})

	app.Get("/api/recent", func(c *fiber.Ctx) error {
		recent, err := resolver.Recent(opts.RecentDays)
		if err != nil {
			return toFiberError(logger, err)
		}
		return c.JSON(recent)
	})

	app.Get("/update-cache", func(c *fiber.Ctx) error {
		runID, err := updater.Trigger()
		if err != nil {
			return toFiberError(logger, err)
		}
		logger.Info("update triggered", zap.String("run_id", runID))
		return c.JSON(fiber.Map{
			"status": "processing",
			"runId":  runID,
		})
	})
}

// readingQuery holds the query parameters of /api.
type readingQuery struct {
	Date string `validate:"required_with=Time,omitempty,datetime=2006-01-02"`
	Time string `validate:"omitempty,datetime=15:04"`
}

func (q *readingQuery) bind(c *fiber.Ctx) error {
	q.Date = strings.TrimSpace(c.Query("date"))
	q.Time = strings.TrimSpace(c.Query("time"))

	if err := validate.Struct(q); err != nil {
		return describeValidation(err)
	}
	return nil
}

// describeValidation turns validator output into a message with a corrective
// example.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	switch fe := verrs[0]; {
	case fe.Field() == "Date" && fe.Tag() == "required_with":
		return errors.New("time requires a date, e.g. ?date=2025-09-28&time=22:30")
	case fe.Field() == "Date":
		return errors.New("date must be YYYY-MM-DD, e.g. ?date=2025-09-28")
	default:
		return errors.New("time must be H:MM or HH:MM, e.g. ?date=2025-09-28&time=22:30")
	}
}

// toFiberError maps domain errors to HTTP status codes.
func toFiberError(logger *zap.Logger, err error) error {
	switch {
	case errors.Is(err, colors.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, colors.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, "no data yet, the first update has not completed")
	case errors.Is(err, colors.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, colors.ErrUpdateInProgress):
		return fiber.NewError(fiber.StatusTooManyRequests, err.Error())
	}
	logger.Error("request failed", zap.Error(err))
	return fiber.NewError(fiber.StatusInternalServerError, "failed to read color data")
}
