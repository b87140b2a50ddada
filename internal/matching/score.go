package matching

import (
	"math"
	"slices"
	"strings"
)

type BudgetTier string

const (
	BudgetLow      BudgetTier = "low"
	BudgetMid      BudgetTier = "mid"
	BudgetFlexible BudgetTier = "flexible"
)

// Упорядоченная шкала бюджета, соседние уровни дают частичное совпадение
var budgetOrder = []BudgetTier{BudgetLow, BudgetMid, BudgetFlexible}

func (b BudgetTier) Valid() bool {
	return slices.Contains(budgetOrder, b)
}

type Vibe string

const (
	VibeMosh  Vibe = "mosh"
	VibeChill Vibe = "chill"
	VibeIndie Vibe = "indie"
)

// UserTaste - снимок музыкальных предпочтений пользователя
type UserTaste struct {
	Genres  []string   `json:"genres"`
	Artists []string   `json:"artists"`
	Budget  BudgetTier `json:"budget_tier"`
	Vibes   []Vibe     `json:"vibes"`
}

// EventTaste - жанр и артист события
type EventTaste struct {
	Genre  string `json:"genre"`
	Artist string `json:"artist"`
}

const (
	baseEventScore = 50

	genreExactBonus    = 30
	genrePartialBonus  = 15
	artistExactBonus   = 20
	artistPartialBonus = 10

	genreWeight  = 30
	artistWeight = 25
	budgetWeight = 20
	vibeWeight   = 25

	// Нет данных - это не несовместимость
	neutralOverlap = 0.5
)

// EventMatchScore оценивает событие для пользователя в диапазоне [0,100]
func EventMatchScore(taste UserTaste, event EventTaste) int {
	score := baseEventScore
	score += containmentBonus(taste.Genres, event.Genre, genreExactBonus, genrePartialBonus)
	score += containmentBonus(taste.Artists, event.Artist, artistExactBonus, artistPartialBonus)
	return clamp(score, 0, 100)
}

// containmentBonus: точное совпадение без учета регистра, иначе вхождение подстроки
func containmentBonus(prefs []string, value string, exact, partial int) int {
	value = normalize(value)
	if value == "" {
		return 0
	}

	partialHit := false
	for _, p := range prefs {
		p = normalize(p)
		if p == "" {
			continue
		}
		if p == value {
			return exact
		}
		if strings.Contains(value, p) || strings.Contains(p, value) {
			partialHit = true
		}
	}
	if partialHit {
		return partial
	}
	return 0
}

// UserCompatibility считает совместимость двух пользователей в диапазоне [0,100]
func UserCompatibility(a, b UserTaste) int {
	sum := Overlap(a.Genres, b.Genres)*genreWeight +
		Overlap(a.Artists, b.Artists)*artistWeight +
		BudgetAlignment(a.Budget, b.Budget)*budgetWeight +
		Overlap(vibesToStrings(a.Vibes), vibesToStrings(b.Vibes))*vibeWeight

	total := float64(genreWeight + artistWeight + budgetWeight + vibeWeight)
	return clamp(int(math.Round(sum*100/total)), 0, 100)
}

// Overlap - индекс Жаккара по множествам без учета регистра.
// Если одно из множеств пустое, возвращает 0.5.
func Overlap(a, b []string) float64 {
	setA := toSet(a)
	setB := toSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return neutralOverlap
	}

	shared := 0
	for item := range setA {
		if _, ok := setB[item]; ok {
			shared++
		}
	}
	union := len(setA) + len(setB) - shared
	return float64(shared) / float64(union)
}

// BudgetAlignment сравнивает уровни бюджета
func BudgetAlignment(a, b BudgetTier) float64 {
	if !a.Valid() || !b.Valid() {
		return neutralOverlap
	}
	if a == b {
		return 1
	}
	if a == BudgetFlexible || b == BudgetFlexible {
		return 0.8
	}
	diff := slices.Index(budgetOrder, a) - slices.Index(budgetOrder, b)
	if diff == 1 || diff == -1 {
		return 0.5
	}
	return 0.2
}

// SortEventsByPreference - стабильная сортировка по убыванию EventMatchScore
func SortEventsByPreference[E any](events []E, taste UserTaste, tasteOf func(E) EventTaste) []E {
	return sortByScore(events, func(e E) int {
		return EventMatchScore(taste, tasteOf(e))
	})
}

// SortMembersByCompatibility - стабильная сортировка по убыванию UserCompatibility
func SortMembersByCompatibility[M any](members []M, self UserTaste, tasteOf func(M) UserTaste) []M {
	return sortByScore(members, func(m M) int {
		return UserCompatibility(self, tasteOf(m))
	})
}

func sortByScore[T any](items []T, score func(T) int) []T {
	type scored struct {
		item  T
		score int
	}
	tmp := make([]scored, len(items))
	for i, it := range items {
		tmp[i] = scored{item: it, score: score(it)}
	}
	slices.SortStableFunc(tmp, func(x, y scored) int {
		return y.score - x.score
	})

	out := make([]T, len(tmp))
	for i, s := range tmp {
		out[i] = s.item
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, it := range items {
		it = normalize(it)
		if it == "" {
			continue
		}
		set[it] = struct{}{}
	}
	return set
}

func vibesToStrings(vibes []Vibe) []string {
	out := make([]string, len(vibes))
	for i, v := range vibes {
		out[i] = string(v)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func clamp(v, lo, hi int) int {
	return max(lo, min(hi, v))
}
