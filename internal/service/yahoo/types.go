package yahoo

// chartResponse mirrors /v8/finance/chart.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"chart"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// rawValue is Yahoo's {"raw": 1.2, "fmt": "1.20"} number encoding; empty
// objects stand for unknown values.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// quoteSummaryResponse mirrors /v10/finance/quoteSummary for the modules
// defaultKeyStatistics, summaryDetail and financialData.
type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE rawValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				PriceToBook        rawValue `json:"priceToBook"`
				EnterpriseToEbitda rawValue `json:"enterpriseToEbitda"`
				SharesShort        rawValue `json:"sharesShort"`
				FloatShares        rawValue `json:"floatShares"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				DebtToEquity rawValue `json:"debtToEquity"`
				FreeCashflow rawValue `json:"freeCashflow"`
			} `json:"financialData"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"quoteSummary"`
}

type optionContract struct {
	Volume *float64 `json:"volume"`
}

// optionsResponse mirrors /v7/finance/options; without a date parameter the
// first chain is the nearest expiry.
type optionsResponse struct {
	OptionChain struct {
		Result []struct {
			ExpirationDates []int64 `json:"expirationDates"`
			Options         []struct {
				ExpirationDate int64            `json:"expirationDate"`
				Calls          []optionContract `json:"calls"`
				Puts           []optionContract `json:"puts"`
			} `json:"options"`
		} `json:"result"`
		Error *apiError `json:"error"`
	} `json:"optionChain"`
}
