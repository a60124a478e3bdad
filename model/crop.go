package model

import "fmt"

// CropMode selects which part of a page a consumer displays. When a
// presentation PDF carries notes on the second half of each page, the main
// view shows one half and the notes view the other.
type CropMode int32

const (
	CropFull CropMode = iota
	CropLeftHalf
	CropRightHalf
)

func (m CropMode) String() string {
	switch m {
	case CropFull:
		return "full"
	case CropLeftHalf:
		return "left"
	case CropRightHalf:
		return "right"
	default:
		return fmt.Sprintf("crop(%d)", int32(m))
	}
}

// ParseCropMode maps a config string onto a CropMode.
func ParseCropMode(s string) (CropMode, error) {
	switch s {
	case "", "full":
		return CropFull, nil
	case "left":
		return CropLeftHalf, nil
	case "right":
		return CropRightHalf, nil
	default:
		return CropFull, fmt.Errorf("unknown crop mode %q", s)
	}
}
