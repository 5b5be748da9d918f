package models

// Requests for the reporting HTTP endpoints. Defined in domain for
// consistency and reuse.

type BacktestRequest struct {
	Symbol     string  `query:"symbol" json:"symbol" validate:"required"`
	Days       int     `query:"days" json:"days" default:"90" validate:"gte=10,lte=1825"`
	Quantity   float64 `query:"quantity" json:"quantity" default:"1" validate:"gt=0"`
	Confidence float64 `query:"confidence" json:"confidence" default:"0.5" validate:"gte=0,lte=1"`
	Model      string  `query:"model" json:"model" default:"ensemble"`
}

type TrainRequest struct {
	Symbol    string  `query:"symbol" json:"symbol" validate:"required"`
	Days      int     `query:"days" json:"days" default:"365" validate:"gte=30,lte=1825"`
	Lookahead int     `query:"lookahead" json:"lookahead" default:"5" validate:"gte=1,lte=60"`
	Threshold float64 `query:"threshold" json:"threshold" default:"0.01" validate:"gt=0"`
	Model     string  `query:"model" json:"model" default:"ensemble"`
	Async     bool    `query:"async" json:"async"`
}

type ModelRequest struct {
	Name    string `query:"name" json:"name" validate:"required"`
	Version int    `query:"version" json:"version" validate:"gte=0"`
}
