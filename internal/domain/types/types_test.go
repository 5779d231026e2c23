package types_test

import (
	"testing"

	json "github.com/goccy/go-json"
	types "github.com/okian/replaytune/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestOrderedSet(t *testing.T) {
	Convey("Given an OrderedSet", t, func() {
		Convey("When labels are added with repeats", func() {
			s := types.NewOrderedSet("Tense", "Dramatic", "Tense")
			s.Add("Clutch", "Dramatic", "")

			Convey("Then first occurrences are kept in order", func() {
				So(s.Items(), ShouldResemble, []string{"Tense", "Dramatic", "Clutch"})
				So(s.Len(), ShouldEqual, 3)
				So(s.Contains("Clutch"), ShouldBeTrue)
				So(s.Contains(""), ShouldBeFalse)
			})
		})

		Convey("When the zero value is used", func() {
			var s types.OrderedSet

			Convey("Then it is empty and encodes as an empty array", func() {
				So(s.Len(), ShouldEqual, 0)
				So(s.Contains("x"), ShouldBeFalse)
				b, err := json.Marshal(s)
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "[]")
			})
		})

		Convey("When Items is mutated by the caller", func() {
			s := types.NewOrderedSet("a", "b")
			items := s.Items()
			items[0] = "z"

			Convey("Then the set is unchanged", func() {
				So(s.Items(), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When decoding a JSON array with duplicates", func() {
			var s types.OrderedSet
			err := json.Unmarshal([]byte(`["Focused","Tense","Focused"]`), &s)

			Convey("Then duplicates are dropped", func() {
				So(err, ShouldBeNil)
				So(s.Items(), ShouldResemble, []string{"Focused", "Tense"})
			})
		})
	})
}
