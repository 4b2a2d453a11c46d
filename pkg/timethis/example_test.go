package timethis_test

import (
	"fmt"
	"time"

	"github.com/psantana5/timethis/pkg/timethis"
	"github.com/psantana5/timethis/pkg/timethis/testutil"
)

func ExampleOnce() {
	elapsed := timethis.Once(func() {
		x := make([]int, 0)
		for i := 0; i < 1000; i++ {
			x = append(x, i)
		}
	})

	fmt.Println(elapsed >= 0)
	// Output: true
}

func ExampleTimer_Loops() {
	clock := testutil.NewFakeClock(time.Unix(0, 0))
	timer := timethis.New(clock)

	total := timer.Loops(10, func() {
		clock.Advance(100 * time.Microsecond)
	})

	fmt.Println(total)
	// Output: 1ms
}
