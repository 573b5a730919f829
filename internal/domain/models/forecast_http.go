package models

// ForecastRequest is the query accepted by the forecast endpoint.
// From/To are optional bounds: YYYY-MM-DD, RFC3339 or unix seconds.
type ForecastRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required,max=32"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}
