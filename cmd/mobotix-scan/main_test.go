package main

import (
	"testing"

	"go.viam.com/test"
)

func TestParseRoute(t *testing.T) {
	presets, err := parseRoute(Arguments{Presets: "1,5,9"})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldResemble, []int{1, 5, 9})

	presets, err = parseRoute(Arguments{})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldHaveLength, 31)
	test.That(t, presets[0], test.ShouldEqual, 1)
	test.That(t, presets[30], test.ShouldEqual, 28)

	presets, err = parseRoute(Arguments{Directions: "SS,NH", StartPreset: 1})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, presets, test.ShouldResemble, []int{1, 18})

	_, err = parseRoute(Arguments{Presets: "1,x"})
	test.That(t, err, test.ShouldNotBeNil)
}
