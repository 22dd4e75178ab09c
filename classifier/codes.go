package classifier

// TagCode pairs a human-readable tag label with its compact code.
type TagCode struct {
	Label string
	Code  string
}

// DefaultTagCodes returns the built-in label/code table per category. A
// taxonomy file may override or extend it with "Label = CODE" lines.
func DefaultTagCodes() map[Category][]TagCode {
	return map[Category][]TagCode{
		CategoryProfile: {
			{Label: "Gaussian", Code: "GAU"},
			{Label: "DoublePeak", Code: "DP"},
			{Label: "SinglePeak", Code: "SP"},
			{Label: "MultiComponent", Code: "MC"},
			{Label: "Interpulse", Code: "IP"},
			{Label: "Scattered", Code: "SCAT"},
			{Label: "Complex", Code: "CPX"},
		},
		CategoryPolarization: {
			{Label: "HighLinear", Code: "HL"},
			{Label: "HighCircular", Code: "HC"},
			{Label: "PositionAngleSwing", Code: "PA"},
			{Label: "PositionAngleJump", Code: "PAJ"},
			{Label: "OrthogonalModes", Code: "OPM"},
			{Label: "Depolarised", Code: "DEPOL"},
		},
		CategoryFrequency: {
			{Label: "ProfileEvolution", Code: "PEVO"},
			{Label: "Scintillation", Code: "SCINT"},
			{Label: "WideSpan", Code: "SPAN"},
			{Label: "Flat", Code: "FLAT"},
		},
		CategoryTime: {
			{Label: "Stable", Code: "STAB"},
			{Label: "Nulling", Code: "NULL"},
			{Label: "ModeChanging", Code: "MODE"},
			{Label: "Drifting", Code: "DRIFT"},
			{Label: "Intermittent", Code: "INT"},
			{Label: "Glitching", Code: "GLT"},
		},
		CategoryObservation: {
			{Label: "LowSN", Code: "LSN"},
			{Label: "RFI", Code: "RFI"},
			{Label: "Calibration", Code: "CAL"},
			{Label: "FollowUp", Code: "FUP"},
		},
	}
}

func defaultCode(cat Category, label string) (string, bool) {
	for _, tc := range DefaultTagCodes()[cat] {
		if tc.Label == label {
			return tc.Code, true
		}
	}
	return "", false
}
