package skirmish

import (
	"fmt"
	"sort"
)

// TroopGrade is the service grade of one troop, living or fallen.
type TroopGrade struct {
	Label    string
	Survived bool
	Rank     int
	Kills    int
	Score    float64 // 0-100
	Grade    string
}

// GradeRoster grades every survivor and hero in d, best first.
func GradeRoster(d Debrief) []TroopGrade {
	var grades []TroopGrade
	for _, t := range d.Roster {
		grades = append(grades, gradeOf(t.Label(), true, int(t.Rank), int(t.Kills)))
	}
	for _, h := range d.Heroes {
		grades = append(grades, gradeOf(fmt.Sprintf("R%d", h.RecruitID), false, int(h.Rank), int(h.Kills)))
	}
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].Score > grades[j].Score
	})
	return grades
}

func gradeOf(label string, survived bool, rank, kills int) TroopGrade {
	score := float64(kills)*12 + float64(rank)*4
	if survived {
		score += 20
	}
	score = gradeClamp(score)
	return TroopGrade{
		Label:    label,
		Survived: survived,
		Rank:     rank,
		Kills:    kills,
		Score:    score,
		Grade:    LetterGrade(score),
	}
}

// AverageScore is the mean score of grades, 0 when empty.
func AverageScore(grades []TroopGrade) float64 {
	if len(grades) == 0 {
		return 0
	}
	sum := 0.0
	for _, g := range grades {
		sum += g.Score
	}
	return sum / float64(len(grades))
}

func gradeClamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// LetterGrade maps a 0-100 score to a letter grade.
func LetterGrade(score float64) string {
	switch {
	case score >= 93:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 78:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 62:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}
