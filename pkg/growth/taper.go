package growth

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanema/gween/ease"
)

// tapers maps recipe names to radius profiles for Trunk.Taper.
var tapers = map[string]ease.TweenFunc{
	"linear":       ease.Linear,
	"in-quad":      ease.InQuad,
	"out-quad":     ease.OutQuad,
	"in-out-quad":  ease.InOutQuad,
	"in-cubic":     ease.InCubic,
	"out-cubic":    ease.OutCubic,
	"in-out-cubic": ease.InOutCubic,
	"in-sine":      ease.InSine,
	"out-sine":     ease.OutSine,
	"in-out-sine":  ease.InOutSine,
	"in-expo":      ease.InExpo,
	"out-expo":     ease.OutExpo,
	"in-out-expo":  ease.InOutExpo,
	"in-circ":      ease.InCirc,
	"out-circ":     ease.OutCirc,
	"in-out-circ":  ease.InOutCirc,
}

// TaperByName returns the radius profile registered under name.
func TaperByName(name string) (ease.TweenFunc, error) {
	if f, ok := tapers[name]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("unknown taper %q, want one of %s", name, strings.Join(TaperNames(), ", "))
}

// TaperNames lists the registered profiles in sorted order.
func TaperNames() []string {
	names := make([]string, 0, len(tapers))
	for n := range tapers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
