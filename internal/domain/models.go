package domain

// BalanceType is the XBRL balance attribute of a concept. The empty
// value means the attribute is unspecified, which matching treats as
// a wildcard.
type BalanceType string

const (
	BalanceDebit  BalanceType = "debit"
	BalanceCredit BalanceType = "credit"
)

// PeriodType is the XBRL period type attribute. Empty means unspecified.
type PeriodType string

const (
	PeriodInstant  PeriodType = "instant"
	PeriodDuration PeriodType = "duration"
)

// DataType is the expected data type of a component's values.
type DataType string

const (
	DataMonetary DataType = "monetary"
	DataShares   DataType = "shares"
	DataPure     DataType = "pure"
	DataPerShare DataType = "per_share"
)

// Category is the primary statement a component belongs to.
type Category string

const (
	CategoryBalanceSheet    Category = "balance_sheet"
	CategoryIncomeStatement Category = "income_statement"
	CategoryCashFlow        Category = "cash_flow"
	CategoryEquity          Category = "equity"
	CategoryPerShare        Category = "per_share"
	CategoryMarketData      Category = "market_data"
)

// MatchType selects how a pattern is compared against text.
type MatchType string

const (
	MatchContains   MatchType = "contains"
	MatchStartsWith MatchType = "starts_with"
	MatchEndsWith   MatchType = "ends_with"
	MatchExact      MatchType = "exact"
	MatchRegex      MatchType = "regex"
)

// TiebreakerStrategy selects among equally-scored candidates.
type TiebreakerStrategy string

const (
	TiebreakHighestInHierarchy  TiebreakerStrategy = "highest_in_hierarchy"
	TiebreakMostChildren        TiebreakerStrategy = "most_children"
	TiebreakExactLabelMatch     TiebreakerStrategy = "exact_label_match"
	TiebreakFirstInPresentation TiebreakerStrategy = "first_in_presentation"
)

// Confidence is the calibrated trust level of a resolved match.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ExpectedSign is the sign a matched value is expected to have.
type ExpectedSign string

const (
	SignPositive ExpectedSign = "positive"
	SignNegative ExpectedSign = "negative"
	SignEither   ExpectedSign = "either"
)

// RelationType is an expected relationship between two components.
type RelationType string

const (
	RelationLessThan           RelationType = "less_than"
	RelationGreaterThan        RelationType = "greater_than"
	RelationApproximatelyEqual RelationType = "approximately_equal"
)

// MatchStatus is the outcome of a component resolution attempt.
type MatchStatus string

const (
	StatusMatched              MatchStatus = "matched"
	StatusNoMatch              MatchStatus = "no_match"
	StatusCompositeResolved    MatchStatus = "composite_resolved"
	StatusCompositeFailed      MatchStatus = "composite_failed"
	StatusRequiresPriorPeriod  MatchStatus = "requires_prior_period"
	StatusExternalDataRequired MatchStatus = "external_data_required"
)
