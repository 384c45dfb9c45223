package wompi

import "time"

// Transaction statuses reported by Wompi.
const (
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusDeclined = "DECLINED"
	StatusVoided   = "VOIDED"
	StatusError    = "ERROR"
)

// PaymentMethodPSE is the payment_method.type for Colombian bank redirects.
const PaymentMethodPSE = "PSE"

// PSE user types per the gateway contract.
const (
	UserTypeNatural = 0
	UserTypeLegal   = 1
)

// TransactionRequest is the body posted to /transactions.
type TransactionRequest struct {
	AcceptanceToken string               `json:"acceptance_token,omitempty"`
	AmountInCents   int64                `json:"amount_in_cents"`
	Currency        string               `json:"currency"`
	CustomerEmail   string               `json:"customer_email"`
	PaymentMethod   PSEPaymentMethod     `json:"payment_method"`
	Reference       string               `json:"reference"`
	RedirectURL     string               `json:"redirect_url"`
	Signature       TransactionSignature `json:"signature"`
}

type PSEPaymentMethod struct {
	Type                     string `json:"type"`
	UserType                 int    `json:"user_type"`
	UserLegalIDType          string `json:"user_legal_id_type"`
	UserLegalID              string `json:"user_legal_id"`
	FinancialInstitutionCode string `json:"financial_institution_code"`
	PaymentDescription       string `json:"payment_description"`
}

type TransactionSignature struct {
	Integrity string `json:"integrity"`
}

// Transaction mirrors the gateway's representation. Wompi owns this state;
// we only read it.
type Transaction struct {
	ID            string            `json:"id"`
	Status        string            `json:"status"`
	StatusMessage string            `json:"status_message,omitempty"`
	Reference     string            `json:"reference"`
	AmountInCents int64             `json:"amount_in_cents"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	PaymentMethod TransactionMethod `json:"payment_method"`
	RedirectURL   string            `json:"redirect_url,omitempty"`
	CreatedAt     *time.Time        `json:"created_at,omitempty"`
	FinalizedAt   *time.Time        `json:"finalized_at,omitempty"`
}

type TransactionMethod struct {
	Type  string      `json:"type"`
	Extra MethodExtra `json:"extra"`
}

type MethodExtra struct {
	// AsyncPaymentURL is the bank-hosted page the customer must be redirected
	// to for PSE transactions.
	AsyncPaymentURL string `json:"async_payment_url,omitempty"`
	TicketID        string `json:"ticket_id,omitempty"`
}

// AsyncPaymentURL returns the redirect target for the hosted payment flow,
// or "" when the gateway did not provide one.
func (t *Transaction) AsyncPaymentURL() string {
	return t.PaymentMethod.Extra.AsyncPaymentURL
}

// FinancialInstitution is one PSE redirect bank.
type FinancialInstitution struct {
	Code string `json:"financial_institution_code"`
	Name string `json:"financial_institution_name"`
}
