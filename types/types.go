package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// FeeType enumerates the payment categories a student can pick.
type FeeType string

const (
	FeeTypeCollege FeeType = "College Fee"
	FeeTypeEvent   FeeType = "Event Fee"
	FeeTypeCRT     FeeType = "CRT Fee"
	FeeTypeHostel  FeeType = "Hostel Fee"
	FeeTypeOthers  FeeType = "Others"
)

// FeeTypes lists every accepted fee type, in display order.
func FeeTypes() []FeeType {
	return []FeeType{FeeTypeCollege, FeeTypeEvent, FeeTypeCRT, FeeTypeHostel, FeeTypeOthers}
}

func (f FeeType) Valid() bool {
	switch f {
	case FeeTypeCollege, FeeTypeEvent, FeeTypeCRT, FeeTypeHostel, FeeTypeOthers:
		return true
	}
	return false
}

func (f FeeType) String() string { return string(f) }

// WalletSession is the connection state shared by every page.
// Owned exclusively by session.Manager; callers only ever see copies.
type WalletSession struct {
	Connected bool            `json:"connected"`
	Address   string          `json:"address,omitempty"`
	Balance   decimal.Decimal `json:"balance"`
}

// PaymentRequest holds the user-entered fee-payment fields.
type PaymentRequest struct {
	StudentName string          `json:"studentName" validate:"required"`
	CollegeName string          `json:"collegeName" validate:"required"`
	Year        string          `json:"year,omitempty"`
	Course      string          `json:"course,omitempty"`
	RollNumber  string          `json:"rollNumber" validate:"required"`
	FeeType     FeeType         `json:"feeType" validate:"feetype"`
	Amount      decimal.Decimal `json:"amount"`
}

// Validate checks the submission preconditions. It reports the first
// violation only; form.Form collects the full set for the UI.
func (r *PaymentRequest) Validate() error {
	if r.StudentName == "" {
		return &PayError{Code: ErrInvalidInput, Message: "studentName is required"}
	}
	if r.CollegeName == "" {
		return &PayError{Code: ErrInvalidInput, Message: "collegeName is required"}
	}
	if r.RollNumber == "" {
		return &PayError{Code: ErrInvalidInput, Message: "rollNumber is required"}
	}
	if !r.FeeType.Valid() {
		return &PayError{Code: ErrInvalidInput, Message: fmt.Sprintf("unknown fee type: %s", r.FeeType)}
	}
	if !r.Amount.IsPositive() {
		return &PayError{Code: ErrInvalidInput, Message: "amount must be greater than 0"}
	}
	return nil
}

// TransferResult is what the wallet bridge reports for one submit attempt.
type TransferResult struct {
	Success bool   `json:"success"`
	Hash    string `json:"hash,omitempty"`
	Error   string `json:"error,omitempty"`
}

// TransactionOutcome is the immutable record of one payment submission
// attempt. It is the navigation payload carried to the result page.
type TransactionOutcome struct {
	Success bool            `json:"success"`
	Hash    string          `json:"hash,omitempty"`
	Error   string          `json:"error,omitempty"`
	Request *PaymentRequest `json:"studentDetails,omitempty"`
}

// HasRequest reports whether the outcome carries the submitted details.
// Result pages render a "no transaction data" fallback when it is false.
func (o *TransactionOutcome) HasRequest() bool {
	return o != nil && o.Request != nil
}

// Route returns the result page the outcome navigates to.
func (o *TransactionOutcome) Route() string {
	if o.Success {
		return RouteSuccess
	}
	return RouteFailed
}

// PaymentRecord is one entry in the external payment ledger.
type PaymentRecord struct {
	ID              string          `json:"id,omitempty"`
	StudentName     string          `json:"studentName"`
	CollegeName     string          `json:"collegeName"`
	Year            string          `json:"year,omitempty"`
	Course          string          `json:"course,omitempty"`
	RollNumber      string          `json:"rollNumber"`
	FeeType         FeeType         `json:"feeType"`
	Amount          decimal.Decimal `json:"amount"`
	TransactionHash string          `json:"transactionHash"`
	Status          string          `json:"status"`
	Date            time.Time       `json:"date"`
}

// NewPaymentRecord flattens a successful outcome into a ledger entry,
// matching the payload shape the success page posts.
func NewPaymentRecord(req *PaymentRequest, hash string, at time.Time) PaymentRecord {
	return PaymentRecord{
		StudentName:     req.StudentName,
		CollegeName:     req.CollegeName,
		Year:            req.Year,
		Course:          req.Course,
		RollNumber:      req.RollNumber,
		FeeType:         req.FeeType,
		Amount:          req.Amount,
		TransactionHash: hash,
		Status:          "success",
		Date:            at.UTC(),
	}
}

// Validate checks a ledger entry on read, so malformed records surface at
// the boundary instead of deep in a page render.
func (p *PaymentRecord) Validate() error {
	if p.StudentName == "" {
		return fmt.Errorf("paymentRecord.studentName is required")
	}
	if p.TransactionHash == "" {
		return fmt.Errorf("paymentRecord.transactionHash is required")
	}
	if p.Status == "" {
		return fmt.Errorf("paymentRecord.status is required")
	}
	return nil
}

// Receipt renders the record as the plain-text lines of the payment receipt.
func (p *PaymentRecord) Receipt() []string {
	lines := []string{
		fmt.Sprintf("Student Name: %s", p.StudentName),
		fmt.Sprintf("College Name: %s", p.CollegeName),
		fmt.Sprintf("Year: %s", p.Year),
		fmt.Sprintf("Course: %s", p.Course),
		fmt.Sprintf("Roll Number: %s", p.RollNumber),
		fmt.Sprintf("Fee Type: %s", p.FeeType),
		fmt.Sprintf("Amount: %s APT", p.Amount.String()),
	}
	if p.TransactionHash != "" {
		lines = append(lines, fmt.Sprintf("Transaction Hash: %s", p.TransactionHash))
	}
	lines = append(lines,
		fmt.Sprintf("Date: %s", p.Date.Format(time.RFC3339)),
		"Status: Payment Successful",
	)
	return lines
}

// BridgeConfig contains configuration for a wallet bridge.
type BridgeConfig struct {
	Network      Network           `json:"network"`
	ExtensionURL string            `json:"extensionUrl"`
	FullnodeURL  string            `json:"fullnodeUrl,omitempty"`
	Timeout      time.Duration     `json:"timeout,omitempty"`
	Headers      map[string]string `json:"headers,omitempty"`
}

// Config contains global configuration for the aptpay core.
type Config struct {
	// Address every fee payment is transferred to.
	InstitutionAddress string `json:"institutionAddress" validate:"required"`

	// Ledger append/read endpoint. Empty disables the ledger side effect.
	LedgerURL string `json:"ledgerUrl,omitempty"`

	Bridge         BridgeConfig  `json:"bridge"`
	DefaultTimeout time.Duration `json:"defaultTimeout,omitempty"`
	LogLevel       string        `json:"logLevel,omitempty"`
	EnableMetrics  bool          `json:"enableMetrics,omitempty"`
}

// PayError is the coded error type used across the module.
type PayError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e *PayError) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrExtensionMissing   = "EXTENSION_MISSING"
	ErrUserRejected       = "USER_REJECTED"
	ErrConnectFailed      = "CONNECT_FAILED"
	ErrInvalidInput       = "INVALID_INPUT"
	ErrTransferFailed     = "TRANSFER_FAILED"
	ErrBalanceQueryFailed = "BALANCE_QUERY_FAILED"
	ErrLedgerError        = "LEDGER_ERROR"
	ErrConfigError        = "CONFIG_ERROR"
)

// Messages the result pages rely on verbatim.
const (
	MsgExtensionMissing = "Petra Wallet not installed"
	MsgInvalidTransfer  = "Invalid recipient address or amount"
	MsgTransferFailed   = "Transaction failed"
	MsgNoHashReturned   = "Transaction submitted but no hash returned"
)
