package movement

// Límites del hot score.
const (
	MinHotScore = 0
	MaxHotScore = 100
)

// ageAdjustment término único según el bucket de antigüedad.
var ageAdjustment = map[AgeBucket]int{
	BucketNormal:    5,
	BucketSlowMove:  2,
	BucketVerySlow1: -5,
	BucketVerySlow2: -10,
	BucketVerySlow3: -15,
	BucketDeadStock: -20,
}

// HotScore combina velocidad de venta, frecuencia, relevancia externa (0..1), recencia,
// tasa de órdenes completadas y antigüedad en un puntaje acotado a [0,100].
func HotScore(a Analysis, relevance float64) int {
	score := 0

	switch v := a.SalesVelocity; {
	case v > 100:
		score += 30
	case v > 50:
		score += 25
	case v > 20:
		score += 20
	case v > 10:
		score += 15
	case v > 0:
		score += 10
	}

	switch f := a.MovementFrequency; {
	case f > 2:
		score += 20
	case f > 1:
		score += 15
	case f > 0.5:
		score += 10
	case f > 0:
		score += 5
	}

	switch {
	case relevance > 0.8:
		score += 25
	case relevance > 0.6:
		score += 20
	case relevance > 0.4:
		score += 15
	case relevance > 0.25:
		score += 10
	}

	if a.RecentActivity {
		score += 10
	}

	switch rate := a.OrderCompletionRate(); {
	case rate > 0.9:
		score += 10
	case rate > 0.7:
		score += 7
	case rate > 0.5:
		score += 5
	}

	score += ageAdjustment[a.AgeBucket]

	if score < MinHotScore {
		return MinHotScore
	}
	if score > MaxHotScore {
		return MaxHotScore
	}
	return score
}
