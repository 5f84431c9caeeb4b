package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile holds the synthesizer operating limits the planner works against.
// The zero value is not usable; start from Default and override fields via YAML.
type Profile struct {
	// MinVCOFreq is the lowest supported PLL (VCO) frequency in Hz.
	MinVCOFreq float64 `yaml:"min_vco_freq"`
	// MaxVCOFreq is the highest supported PLL (VCO) frequency in Hz.
	MaxVCOFreq float64 `yaml:"max_vco_freq"`
	// MaxDenominator bounds the denominator of fractional divider settings.
	MaxDenominator uint32 `yaml:"max_denominator"`
	// MinClkinFreq is the lowest accepted reference (CLKIN) frequency in Hz.
	MinClkinFreq float64 `yaml:"min_clkin_freq"`
	// MaxClkinFreq is the highest accepted reference (CLKIN) frequency in Hz.
	MaxClkinFreq float64 `yaml:"max_clkin_freq"`
	// MinFeedbackRatio is the lower bound of the fractional feedback multisynth window.
	MinFeedbackRatio float64 `yaml:"min_feedback_ratio"`
	// MaxFeedbackRatio is the upper bound of the feedback multisynth window.
	MaxFeedbackRatio float64 `yaml:"max_feedback_ratio"`
	// MinIntegerFeedback is the smallest even-integer feedback divider.
	MinIntegerFeedback uint32 `yaml:"min_integer_feedback"`
	// MinOutputRatio is the lower bound of the output multisynth window.
	MinOutputRatio float64 `yaml:"min_output_ratio"`
	// MaxOutputRatio is the upper bound of the output multisynth window.
	MaxOutputRatio float64 `yaml:"max_output_ratio"`
	// ClockTolerance is the absolute deviation in Hz below which an achieved
	// clock is considered to match its target.
	ClockTolerance float64 `yaml:"clock_tolerance"`
	// MaxClkinDiv is the maximum number of reference halvings (power-of-two
	// CLKIN pre-divider stages).
	MaxClkinDiv uint8 `yaml:"max_clkin_div"`
	// ClkinDivTarget is the frequency in Hz the reference is halved down to.
	ClkinDivTarget float64 `yaml:"clkin_div_target"`
	// MaxRDiv is the maximum number of clock doublings (power-of-two R-divider
	// post-divider stages).
	MaxRDiv uint8 `yaml:"max_r_div"`
	// RDivTarget is the frequency in Hz the lowest clock is doubled up to.
	RDivTarget float64 `yaml:"r_div_target"`
	// MaxClocks is the number of output clocks the chip can drive from one PLL.
	MaxClocks int `yaml:"max_clocks"`
}

const (
	// DefaultProfileFilename is the default filename for a chip profile override.
	DefaultProfileFilename = "clockplan-profile.yaml"

	// DefaultFilePermissions is the default file permission for profile files.
	DefaultFilePermissions = 0o600
)

var (
	// errProfileIsNotSet is returned when a nil profile is provided.
	errProfileIsNotSet = errors.New("profile is not set")
	// errVCORange is returned when the VCO window is empty or non-positive.
	errVCORange = errors.New("VCO frequency range is invalid")
	// errClkinRange is returned when the CLKIN window is empty or non-positive.
	errClkinRange = errors.New("CLKIN frequency range is invalid")
	// errFeedbackWindow is returned when the feedback multisynth window is invalid.
	errFeedbackWindow = errors.New("feedback multisynth window is invalid")
	// errOutputWindow is returned when the output multisynth window is invalid.
	errOutputWindow = errors.New("output multisynth window is invalid")
	// errDenominator is returned when the fractional denominator bound is zero.
	errDenominator = errors.New("max denominator must be positive")
	// errClockCount is returned when the clock capacity is not positive.
	errClockCount = errors.New("max clocks must be positive")
)

// Default returns the Si5351 profile. These values are part of the external
// contract and match the datasheet operating limits.
func Default() *Profile {
	return &Profile{
		MinVCOFreq:         600e6,
		MaxVCOFreq:         1000e6,
		MaxDenominator:     1_048_575,
		MinClkinFreq:       10e6,
		MaxClkinFreq:       100e6,
		MinFeedbackRatio:   15,
		MaxFeedbackRatio:   90,
		MinIntegerFeedback: 16,
		MinOutputRatio:     4,
		MaxOutputRatio:     900,
		ClockTolerance:     1e-8,
		MaxClkinDiv:        3,
		ClkinDivTarget:     40e6,
		MaxRDiv:            7,
		RDivTarget:         1e6,
		MaxClocks:          3,
	}
}

// Load reads a chip profile from the provided path and validates it.
// Fields missing from the YAML keep their default values.
func Load(path string) (*Profile, error) {
	if path == "" {
		path = DefaultProfileFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}

	profile := Default()
	if err := yaml.Unmarshal(contents, profile); err != nil {
		return nil, fmt.Errorf("unmarshal profile: %w", err)
	}

	if err := Validate(profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// Save writes the profile to the provided path.
func Save(path string, profile *Profile) error {
	if profile == nil {
		return errProfileIsNotSet
	}

	if path == "" {
		path = DefaultProfileFilename
	}

	if err := Validate(profile); err != nil {
		return err
	}

	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}

	return nil
}

// Validate checks the profile for internally consistent operating limits.
func Validate(profile *Profile) error {
	if profile == nil {
		return errProfileIsNotSet
	}

	if profile.MinVCOFreq <= 0 || profile.MaxVCOFreq <= profile.MinVCOFreq {
		return errVCORange
	}

	if profile.MinClkinFreq <= 0 || profile.MaxClkinFreq <= profile.MinClkinFreq {
		return errClkinRange
	}

	if profile.MinFeedbackRatio <= 0 || profile.MaxFeedbackRatio <= profile.MinFeedbackRatio {
		return errFeedbackWindow
	}

	if float64(profile.MinIntegerFeedback) > profile.MaxFeedbackRatio {
		return errFeedbackWindow
	}

	if profile.MinOutputRatio <= 0 || profile.MaxOutputRatio <= profile.MinOutputRatio {
		return errOutputWindow
	}

	if profile.MaxDenominator == 0 {
		return errDenominator
	}

	if profile.MaxClocks <= 0 {
		return errClockCount
	}

	return nil
}
