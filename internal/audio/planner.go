package audio

// Adaptive tuning constants for audio planning.
// These thresholds control how processing parameters adapt to the
// measured signal.
const (
	// Noise reduction strength anchors. Strength is piecewise-linear
	// and monotone decreasing in SNR between these points.
	snrClean      = 30.0 // dB - at or above: no reduction needed
	snrGood       = 25.0 // dB - light reduction
	snrFair       = 15.0 // dB - moderate reduction
	strengthMax   = 70.0 // worst-case strength at 0dB SNR
	strengthFair  = 49.0 // strength at snrFair
	strengthGood  = 35.0 // strength at snrGood
	strengthFloor = 0.0

	// Hissy recordings (strong HF noise) get a small extra allowance,
	// capped below the maximum so speech is never smeared.
	hissRatioThreshold = 0.3
	hissBoost          = 7.0
	hissBoostCap       = 56.0

	// Highpass cutoff tiers keyed on the linear noise floor.
	noiseFloorHeavy    = 0.01  // very noisy room
	noiseFloorModerate = 0.005 // audible hum/rumble
	noiseFloorLight    = 0.002 // faint low-end contamination
	highpassHeavyHz    = 80.0
	highpassModerateHz = 60.0
	highpassLightHz    = 40.0

	// rumbleNoticeable gates the mains-aware cutoff floor. Below this
	// ratio the low band carries no meaningful energy and the cutoff
	// is left alone.
	rumbleNoticeable = 0.08

	// Normalisation targets and limits.
	defaultTargetRMSDB = -18.0 // comfortable speech level with headroom
	gainMaxDB          = 24.0  // never amplify or attenuate beyond this
	gainDeadbandDB     = 1.0   // gains inside the deadband are dropped
	limiterHeadroomDB  = -1.0  // peaks past this after gain need limiting
)

// PlanEnhancement maps metrics to a processing plan. It is pure and
// deterministic: equal inputs always produce equal plans, and the plan
// parameters are clamped to safe ranges regardless of how extreme the
// metrics are.
func PlanEnhancement(m Metrics, opts PlanOptions) Plan {
	target := opts.TargetRMSDB
	if target == 0 {
		target = defaultTargetRMSDB
	}

	plan := Plan{
		NoiseReduction: planNoiseReduction(m),
		HighpassHz:     planHighpass(m, opts.MainsHz),
		TargetRMSDB:    target,
		OutputRate:     m.SampleRate,
	}
	if opts.OutputRate > 0 {
		plan.OutputRate = opts.OutputRate
	}

	plan.GainDB = clamp(target-m.RMSDB, -gainMaxDB, gainMaxDB)
	if plan.GainDB > -gainDeadbandDB && plan.GainDB < gainDeadbandDB {
		plan.GainDB = 0
	}

	// Limit when the source already clips or the planned gain would
	// push the known peak past the headroom ceiling.
	if m.Clipping || m.PeakDB+plan.GainDB > limiterHeadroomDB {
		plan.PeakLimit = true
	}

	return plan
}

// planNoiseReduction derives spectral subtraction strength from SNR.
// Monotone decreasing, clamped to [0, strengthMax].
func planNoiseReduction(m Metrics) float64 {
	var strength float64
	switch {
	case m.SNR >= snrClean:
		strength = strengthFloor
	case m.SNR >= snrGood:
		strength = interpolate(m.SNR, snrGood, snrClean, strengthGood, strengthFloor)
	case m.SNR >= snrFair:
		strength = interpolate(m.SNR, snrFair, snrGood, strengthFair, strengthGood)
	case m.SNR >= 0:
		strength = interpolate(m.SNR, 0, snrFair, strengthMax, strengthFair)
	default:
		strength = strengthMax
	}

	if strength > 0 && m.HighFreqRatio > hissRatioThreshold {
		strength += hissBoost
		if strength > hissBoostCap {
			strength = hissBoostCap
		}
	}

	return clamp(strength, 0, strengthMax)
}

// planHighpass derives the rumble filter cutoff from the noise floor.
// When the low band carries real energy the cutoff never sits below the
// local mains hum fundamental, otherwise the hum passes straight through
// the filter.
func planHighpass(m Metrics, mainsHz float64) float64 {
	var cutoff float64
	switch {
	case m.NoiseFloor > noiseFloorHeavy:
		cutoff = highpassHeavyHz
	case m.NoiseFloor > noiseFloorModerate:
		cutoff = highpassModerateHz
	case m.NoiseFloor > noiseFloorLight:
		cutoff = highpassLightHz
	default:
		return 0
	}

	if mainsHz > 0 && m.RumbleRatio > rumbleNoticeable && cutoff < mainsHz {
		cutoff = mainsHz
	}
	return cutoff
}

// interpolate maps x in [x0, x1] linearly onto [y0, y1].
func interpolate(x, x0, x1, y0, y1 float64) float64 {
	t := (x - x0) / (x1 - x0)
	return y0 + t*(y1-y0)
}
