package tradier

// QuoteHistory is the markets/history payload.
type QuoteHistory struct {
	History *struct {
		Day List[Day] `json:"day"`
	} `json:"history"`
}

type Day struct {
	Date   string  `json:"date"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int     `json:"volume"`
}

// OptionChain is the markets/options/chains payload.
type OptionChain struct {
	Options *struct {
		Option List[Option] `json:"option"`
	} `json:"options"`
}

type Option struct {
	Symbol         string   `json:"symbol"`
	Description    string   `json:"description"`
	Type           string   `json:"type"`
	Last           *float64 `json:"last"`
	Volume         int      `json:"volume"`
	Bid            float64  `json:"bid"`
	Ask            float64  `json:"ask"`
	Underlying     string   `json:"underlying"`
	Strike         float64  `json:"strike"`
	OpenInterest   int      `json:"open_interest"`
	ContractSize   int      `json:"contract_size"`
	ExpirationDate string   `json:"expiration_date"`
	ExpirationType string   `json:"expiration_type"`
	OptionType     string   `json:"option_type"`
	RootSymbol     string   `json:"root_symbol"`
	Greeks         *Greeks  `json:"greeks"`
}

// Greeks are the broker's own estimates, kept for comparison with ours.
type Greeks struct {
	Delta     float64 `json:"delta"`
	Gamma     float64 `json:"gamma"`
	Theta     float64 `json:"theta"`
	Vega      float64 `json:"vega"`
	Rho       float64 `json:"rho"`
	Phi       float64 `json:"phi"`
	BidIv     float64 `json:"bid_iv"`
	MidIv     float64 `json:"mid_iv"`
	AskIv     float64 `json:"ask_iv"`
	SmvVol    float64 `json:"smv_vol"`
	UpdatedAt string  `json:"updated_at"`
}

// Days returns the history rows, empty when the payload carried none.
func (q QuoteHistory) Days() []Day {
	if q.History == nil {
		return nil
	}
	return q.History.Day.Items
}

// Contracts returns the chain entries, empty when the payload carried none.
func (c OptionChain) Contracts() []Option {
	if c.Options == nil {
		return nil
	}
	return c.Options.Option.Items
}
