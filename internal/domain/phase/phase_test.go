package phase_test

import (
	"testing"

	"github.com/okian/crease/internal/domain/model"
	"github.com/okian/crease/internal/domain/phase"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolveWindow(t *testing.T) {
	Convey("Given phase window boundaries", t, func() {
		Convey("When resolving T20 phases", func() {
			So(phase.ResolveWindow(model.PhasePowerplay, model.FormatT20), ShouldResemble, phase.Window{Start: 0, End: 6})
			So(phase.ResolveWindow(model.PhaseMiddle, model.FormatT20), ShouldResemble, phase.Window{Start: 7, End: 15})
			So(phase.ResolveWindow(model.PhaseDeath, model.FormatT20), ShouldResemble, phase.Window{Start: 16, End: 20})
		})

		Convey("When resolving ODI phases", func() {
			So(phase.ResolveWindow(model.PhasePowerplay, model.FormatODI), ShouldResemble, phase.Window{Start: 0, End: 10})
			So(phase.ResolveWindow(model.PhaseMiddle, model.FormatODI), ShouldResemble, phase.Window{Start: 11, End: 40})
			So(phase.ResolveWindow(model.PhaseDeath, model.FormatODI), ShouldResemble, phase.Window{Start: 41, End: 50})
		})

		Convey("When the format has no dedicated boundaries", func() {
			Convey("Then T20 boundaries apply", func() {
				So(phase.ResolveWindow(model.PhaseDeath, model.FormatOther), ShouldResemble, phase.Window{Start: 16, End: 20})
				So(phase.ResolveWindow(model.PhasePowerplay, model.FormatTest), ShouldResemble, phase.Window{Start: 0, End: 6})
			})
		})

		Convey("When the phase kind is unknown", func() {
			Convey("Then the window spans the whole innings", func() {
				So(phase.ResolveWindow(model.PhaseUnknown, model.FormatODI), ShouldResemble, phase.Window{Start: 0, End: 50})
				So(phase.ResolveWindow(model.PhaseUnknown, model.FormatT20), ShouldResemble, phase.Window{Start: 0, End: 20})
			})
		})

		Convey("Then every (kind, format) window sits inside the format's over cap", func() {
			kinds := []model.PhaseKind{model.PhaseUnknown, model.PhasePowerplay, model.PhaseMiddle, model.PhaseDeath}
			formats := []model.Format{model.FormatT20, model.FormatODI, model.FormatTest, model.FormatOther}
			for _, k := range kinds {
				for _, f := range formats {
					w := phase.ResolveWindow(k, f)
					So(w.Start, ShouldBeLessThanOrEqualTo, w.End)
					So(w.Start, ShouldBeGreaterThanOrEqualTo, 0)
					So(w.End, ShouldBeLessThanOrEqualTo, model.MaxOvers(f))
				}
			}
		})
	})
}

func TestWindowContains(t *testing.T) {
	Convey("Given a window", t, func() {
		w := phase.Window{Start: 7, End: 15}

		Convey("Then the interval is closed on both ends", func() {
			So(w.Contains(7), ShouldBeTrue)
			So(w.Contains(15), ShouldBeTrue)
			So(w.Contains(10.5), ShouldBeTrue)
			So(w.Contains(6.833), ShouldBeFalse)
			So(w.Contains(15.167), ShouldBeFalse)
		})
	})
}
