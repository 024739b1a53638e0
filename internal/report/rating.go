package report

import "encoding/json"

type Rating int

const (
	Unrated Rating = iota
	Unproductive
	Neutral
	Productive
)

// Productivity scores as returned by the API.
const (
	ScoreUnrated      = 0
	ScoreUnproductive = 2
	ScoreNeutral      = 3
	ScoreProductive   = 4
)

func (r Rating) String() string {
	switch r {
	case Unrated:
		return "Unrated"
	case Unproductive:
		return "Unproductive"
	case Neutral:
		return "Neutral"
	case Productive:
		return "Productive"
	default:
		return "Unknown"
	}
}

func (r Rating) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

func (r Rating) MarshalYAML() (interface{}, error) {
	return r.String(), nil
}

// Classifier maps a productivity score to a rating.
type Classifier func(score float64) Rating

// ThresholdPolicy buckets scores by range: <=0, (0,2], (2,3], >3.
func ThresholdPolicy(score float64) Rating {
	switch {
	case score <= 0:
		return Unrated
	case score <= 2:
		return Unproductive
	case score <= 3:
		return Neutral
	default:
		return Productive
	}
}

// ExactPolicy matches the named score constants. Any score that is not
// 0, 2 or 3 is Productive.
func ExactPolicy(score float64) Rating {
	switch score {
	case ScoreUnrated:
		return Unrated
	case ScoreUnproductive:
		return Unproductive
	case ScoreNeutral:
		return Neutral
	default:
		return Productive
	}
}
