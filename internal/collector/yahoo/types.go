package yahoo

// rawValue is Yahoo's {raw, fmt} number envelope. Only raw matters here; a
// missing field decodes to the zero value with set=false via pointers below.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

// ptr returns the raw number or nil when Yahoo omitted the field.
func (v rawValue) ptr() *float64 {
	return v.Raw
}

type summaryResponse struct {
	QuoteSummary struct {
		Result []summaryResult `json:"result"`
		Error  *apiError       `json:"error"`
	} `json:"quoteSummary"`
}

type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type summaryResult struct {
	Price struct {
		RegularMarketPrice rawValue `json:"regularMarketPrice"`
		MarketCap          rawValue `json:"marketCap"`
	} `json:"price"`

	AssetProfile struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"assetProfile"`

	FinancialData struct {
		TotalRevenue rawValue `json:"totalRevenue"`
		GrossProfits rawValue `json:"grossProfits"`
		EBITDA       rawValue `json:"ebitda"`
		TotalDebt    rawValue `json:"totalDebt"`
		TotalCash    rawValue `json:"totalCash"`
	} `json:"financialData"`

	KeyStatistics struct {
		SharesOutstanding rawValue `json:"sharesOutstanding"`
	} `json:"defaultKeyStatistics"`

	IncomeStatementHistory struct {
		Statements []incomeStatement `json:"incomeStatementHistory"`
	} `json:"incomeStatementHistory"`

	BalanceSheetHistory struct {
		Statements []balanceSheet `json:"balanceSheetStatements"`
	} `json:"balanceSheetHistory"`
}

type incomeStatement struct {
	TotalRevenue    rawValue `json:"totalRevenue"`
	OperatingIncome rawValue `json:"operatingIncome"`
	NetIncome       rawValue `json:"netIncome"`
}

type balanceSheet struct {
	TotalAssets             rawValue `json:"totalAssets"`
	TotalCurrentAssets      rawValue `json:"totalCurrentAssets"`
	TotalCurrentLiabilities rawValue `json:"totalCurrentLiabilities"`
	TotalStockholderEquity  rawValue `json:"totalStockholderEquity"`
	Cash                    rawValue `json:"cash"`
}
