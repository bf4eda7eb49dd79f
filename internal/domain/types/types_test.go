package types_test

import (
	"math"
	"testing"

	types "github.com/okian/pitchpredict/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given a new table", t, func() {
		table := types.NewTable("Basic Pitch Data", "pitch_type", "count", "percent")

		Convey("Then it should be empty with its layout kept", func() {
			So(table.Empty(), ShouldBeTrue)
			So(table.Len(), ShouldEqual, 0)
			So(table.Columns, ShouldResemble, []string{"count", "percent"})
			So(table.Sum("count"), ShouldEqual, 0)
		})

		Convey("When rows are appended", func() {
			table.Rows = append(table.Rows,
				types.Row{Key: "FF", Values: []float64{3, 60}},
				types.Row{Key: "SL", Values: []float64{2, 40}},
			)

			Convey("Then cells can be looked up by key and column", func() {
				v, ok := table.Value("SL", "percent")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 40)
			})

			Convey("And unknown columns report not found", func() {
				v, ok := table.Value("SL", "spin_rate")
				So(ok, ShouldBeFalse)
				So(math.IsNaN(v), ShouldBeTrue)
			})

			Convey("And sums cover every row", func() {
				So(table.Sum("percent"), ShouldEqual, 100)
				So(table.Keys(), ShouldResemble, []string{"FF", "SL"})
			})
		})

		Convey("When a cell is NaN", func() {
			table.Rows = append(table.Rows,
				types.Row{Key: "FF", Values: []float64{1, math.NaN()}},
				types.Row{Key: "SL", Values: []float64{1, 50}},
			)

			Convey("Then Sum skips it", func() {
				So(table.Sum("percent"), ShouldEqual, 50)
			})
		})
	})
}
