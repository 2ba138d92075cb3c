package logger_test

import (
	"context"
	"errors"
	"testing"

	logger "github.com/okhan/motoval/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestLogger(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When getting the global logger", func() {
			log := logger.Get()

			Convey("Then it should not be nil", func() {
				So(log, ShouldNotBeNil)
			})

			Convey("And logging at every level should not panic", func() {
				ctx := context.Background()
				So(func() {
					log.Debug(ctx, "debug message", logger.String("k", "v"))
					log.Info(ctx, "info message", logger.Int("n", 1))
					log.Warn(ctx, "warn message", logger.Float64("f", 1.5))
					log.Error(ctx, "error message", logger.Error(errors.New("boom")))
				}, ShouldNotPanic)
			})
		})

		Convey("When deriving a named logger", func() {
			named := logger.Named("scoring")

			Convey("Then it should not be nil", func() {
				So(named, ShouldNotBeNil)
			})

			Convey("And further nesting should work", func() {
				So(named.Named("engine"), ShouldNotBeNil)
			})
		})

		Convey("When syncing", func() {
			So(logger.Sync(), ShouldBeNil)
		})
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given an initialized global logger", t, func() {
		So(logger.Init(), ShouldBeNil)

		Convey("When setting recognized levels", func() {
			for _, level := range []string{"debug", "info", "warn", "warning", "error", "INFO", " error "} {
				So(logger.SetLevelString(level), ShouldBeNil)
			}
		})

		Convey("When setting the empty level", func() {
			Convey("Then it should default to info", func() {
				So(logger.SetLevelString(""), ShouldBeNil)
			})
		})

		Convey("When setting an unrecognized level", func() {
			So(logger.SetLevelString("verbose"), ShouldNotBeNil)
		})
	})
}

func TestFields(t *testing.T) {
	Convey("Given the field constructors", t, func() {
		Convey("Then each should carry its key and value", func() {
			So(logger.String("a", "b"), ShouldResemble, logger.Field{Key: "a", Value: "b"})
			So(logger.Int("n", 3), ShouldResemble, logger.Field{Key: "n", Value: 3})
			So(logger.Float64("f", 2.5), ShouldResemble, logger.Field{Key: "f", Value: 2.5})
			So(logger.Any("x", true), ShouldResemble, logger.Field{Key: "x", Value: true})

			err := errors.New("boom")
			So(logger.Error(err), ShouldResemble, logger.Field{Key: "error", Value: err})
		})
	})
}
