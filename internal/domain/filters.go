package domain

// FilterAll is the distinguished wildcard for enum-valued filter fields.
// An empty string means "field untouched" in a partial update; "all" is an
// explicit reset. The two must never be conflated when merging.
const FilterAll = "all"

// Filters is the flat record of optional predicates applied to the pool.
// Enum fields use FilterAll as their unset sentinel, numeric bounds use nil,
// Query uses "" and Tags uses the empty slice.
type Filters struct {
	Platform       string   `json:"platform"`
	Difficulty     string   `json:"difficulty"`
	MinRating      *int     `json:"minRating,omitempty"`
	MaxRating      *int     `json:"maxRating,omitempty"`
	Query          string   `json:"searchQuery"`
	Tags           []string `json:"tags"`
	ContestType    string   `json:"contestType"`
	ProblemType    string   `json:"problemType"`
	ContestEra     string   `json:"contestEra"`
	QuestionNumber string   `json:"questionNumber"`

	// Per-user handles ride along for the verification collaborator; they
	// never participate in pool filtering.
	LeetCodeHandle   string `json:"leetcodeHandle,omitempty"`
	CodeforcesHandle string `json:"codeforcesHandle,omitempty"`
}

// DefaultFilters returns the pass-through filter state.
func DefaultFilters() Filters {
	return Filters{
		Platform:       FilterAll,
		Difficulty:     FilterAll,
		Tags:           []string{},
		ContestType:    FilterAll,
		ProblemType:    FilterAll,
		ContestEra:     FilterAll,
		QuestionNumber: FilterAll,
	}
}

// FilterPatch is a partial filter update. Nil pointers leave the
// corresponding field untouched so that an explicit "all" reset is
// distinguishable from absence.
type FilterPatch struct {
	Platform       *string   `json:"platform,omitempty"`
	Difficulty     *string   `json:"difficulty,omitempty"`
	MinRating      *int      `json:"minRating,omitempty"`
	MaxRating      *int      `json:"maxRating,omitempty"`
	ClearMinRating bool      `json:"clearMinRating,omitempty"`
	ClearMaxRating bool      `json:"clearMaxRating,omitempty"`
	Query          *string   `json:"searchQuery,omitempty"`
	Tags           *[]string `json:"tags,omitempty"`
	ContestType    *string   `json:"contestType,omitempty"`
	ProblemType    *string   `json:"problemType,omitempty"`
	ContestEra     *string   `json:"contestEra,omitempty"`
	QuestionNumber *string   `json:"questionNumber,omitempty"`

	LeetCodeHandle   *string `json:"leetcodeHandle,omitempty"`
	CodeforcesHandle *string `json:"codeforcesHandle,omitempty"`
}

// Apply shallow-merges the patch into f and returns the result.
func (f Filters) Apply(p FilterPatch) Filters {
	if p.Platform != nil {
		f.Platform = *p.Platform
	}
	if p.Difficulty != nil {
		f.Difficulty = *p.Difficulty
	}
	if p.MinRating != nil {
		v := *p.MinRating
		f.MinRating = &v
	}
	if p.ClearMinRating {
		f.MinRating = nil
	}
	if p.MaxRating != nil {
		v := *p.MaxRating
		f.MaxRating = &v
	}
	if p.ClearMaxRating {
		f.MaxRating = nil
	}
	if p.Query != nil {
		f.Query = *p.Query
	}
	if p.Tags != nil {
		f.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.ContestType != nil {
		f.ContestType = *p.ContestType
	}
	if p.ProblemType != nil {
		f.ProblemType = *p.ProblemType
	}
	if p.ContestEra != nil {
		f.ContestEra = *p.ContestEra
	}
	if p.QuestionNumber != nil {
		f.QuestionNumber = *p.QuestionNumber
	}
	if p.LeetCodeHandle != nil {
		f.LeetCodeHandle = *p.LeetCodeHandle
	}
	if p.CodeforcesHandle != nil {
		f.CodeforcesHandle = *p.CodeforcesHandle
	}
	return f
}

// Facets are the distinct-value lists derived from the loaded pool, used to
// populate filter choices.
type Facets struct {
	Tags            []string `json:"tags"`
	ContestTypes    []string `json:"contestTypes"`
	ProblemTypes    []string `json:"problemTypes"`
	ContestEras     []string `json:"contestEras"`
	QuestionNumbers []int    `json:"questionNumbers"`
}
