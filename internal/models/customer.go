package models

// Contract 合约类型
type Contract string

const (
	MonthToMonth Contract = "Month-to-month"
	OneYear      Contract = "One year"
	TwoYear      Contract = "Two year"
)

// InternetService 网络服务类型
type InternetService string

const (
	DSL        InternetService = "DSL"
	FiberOptic InternetService = "Fiber optic"
	NoInternet InternetService = "No"
)

// PaymentMethod 支付方式
type PaymentMethod string

const (
	ElectronicCheck PaymentMethod = "Electronic check"
	MailedCheck     PaymentMethod = "Mailed check"
	BankTransfer    PaymentMethod = "Bank transfer (automatic)"
	CreditCard      PaymentMethod = "Credit card (automatic)"
)

// RiskSegment is the ordinal bucket derived from predicted churn probability.
type RiskSegment string

const (
	LowRisk    RiskSegment = "Low Risk"
	MediumRisk RiskSegment = "Medium Risk"
	HighRisk   RiskSegment = "High Risk"
)

// Sentinel values meaning "not applicable" rather than a declined service.
const (
	NoPhoneServiceSentinel    = "No phone service"
	NoInternetServiceSentinel = "No internet service"
)

// CustomerRecord is one row of the raw dataset. Field order matches the
// column order of the raw CSV file.
type CustomerRecord struct {
	CustomerID       string  `dataframe:"customer_id"`
	Gender           string  `dataframe:"gender"`
	SeniorCitizen    int     `dataframe:"senior_citizen"`
	Partner          string  `dataframe:"partner"`
	Dependents       string  `dataframe:"dependents"`
	TenureMonths     int     `dataframe:"tenure_months"`
	PhoneService     string  `dataframe:"phone_service"`
	MultipleLines    string  `dataframe:"multiple_lines"`
	InternetService  string  `dataframe:"internet_service"`
	Contract         string  `dataframe:"contract"`
	PaperlessBilling string  `dataframe:"paperless_billing"`
	PaymentMethod    string  `dataframe:"payment_method"`
	MonthlyCharges   float64 `dataframe:"monthly_charges"`
	TotalCharges     float64 `dataframe:"total_charges"`
	Churn            string  `dataframe:"churn"`
}

// Raw dataset column names, in output order.
var RawColumns = []string{
	"customer_id", "gender", "senior_citizen", "partner", "dependents",
	"tenure_months", "phone_service", "multiple_lines", "internet_service",
	"contract", "paperless_billing", "payment_method", "monthly_charges",
	"total_charges", "churn",
}

// Columns appended by the feature stage.
const (
	ColTenureGroup   = "tenure_group"
	ColTotalServices = "total_services"
	ColIsAutoPayment = "is_auto_payment"
)

// Columns appended by the model stage.
const (
	ColProbabilityChurn = "Probability_Churn"
	ColRiskSegment      = "Risk_Segment"
	ColMainChurnReason  = "Main_Churn_Reason"
)

// MainReasonLowRisk is emitted when no feature pushes a customer toward
// churn, i.e. every attribution is zero or negative.
const MainReasonLowRisk = "Low Risk / N/A"
