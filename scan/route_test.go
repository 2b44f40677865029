package scan

import (
	"testing"

	"go.viam.com/test"
)

func TestDirectionPresets(t *testing.T) {
	// starting preset 1 is already on the first quadrant plane
	presets, err := DirectionPresets(1, "SS,SH,SG")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldResemble, []int{1, 2, 4})

	// starting preset 5 shifts the plane by one quadrant
	presets, err = DirectionPresets(5, "SS,WS")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldResemble, []int{5, 13})

	// mixed case and surrounding whitespace are tolerated
	presets, err = DirectionPresets(1, " ss , nh ")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldResemble, []int{1, 18})

	// the table wraps past preset 32
	presets, err = DirectionPresets(32, "SEG")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldResemble, []int{27})

	_, err = DirectionPresets(1, "SS,NOPE")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `"NOPE"`)
}

func TestParseInts(t *testing.T) {
	values, err := ParseInts("1,5, 9 ,13")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []int{1, 5, 9, 13})

	values, err = ParseInts("0")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []int{0})

	_, err = ParseInts("1,two,3")
	test.That(t, err, test.ShouldNotBeNil)
	_, err = ParseInts("")
	test.That(t, err, test.ShouldNotBeNil)
}
