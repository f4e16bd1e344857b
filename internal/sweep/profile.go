package sweep

import (
	"fmt"

	"github.com/nadeemsk/sheetflow/internal/model"
)

// Profile selects which state component a study plots.
type Profile int

const (
	ProfileVelocity Profile = iota
	ProfileCrossFlow
	ProfileTemperature
)

func ParseProfile(s string) (Profile, error) {
	switch s {
	case "velocity":
		return ProfileVelocity, nil
	case "crossflow":
		return ProfileCrossFlow, nil
	case "temperature":
		return ProfileTemperature, nil
	default:
		return 0, fmt.Errorf("unknown profile: %s", s)
	}
}

func (p Profile) String() string {
	switch p {
	case ProfileVelocity:
		return "velocity"
	case ProfileCrossFlow:
		return "crossflow"
	case ProfileTemperature:
		return "temperature"
	default:
		return "unknown"
	}
}

// Column is the state index the profile reads.
func (p Profile) Column() int {
	switch p {
	case ProfileVelocity:
		return model.IdxFPrime
	case ProfileCrossFlow:
		return model.IdxG
	case ProfileTemperature:
		return model.IdxTheta
	default:
		return model.IdxFPrime
	}
}

// AxisLabel is the y-axis annotation for figures.
func (p Profile) AxisLabel() string {
	switch p {
	case ProfileVelocity:
		return "F'(η)"
	case ProfileCrossFlow:
		return "G(η)"
	case ProfileTemperature:
		return "θ(η)"
	default:
		return ""
	}
}
