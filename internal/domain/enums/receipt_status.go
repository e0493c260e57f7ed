package enums

type ReceiptStatus string

const (
	ReceiptStatusPending  ReceiptStatus = "pending"
	ReceiptStatusApproved ReceiptStatus = "approved"
	ReceiptStatusRejected ReceiptStatus = "rejected"
)

func (s ReceiptStatus) Terminal() bool {
	return s == ReceiptStatusApproved || s == ReceiptStatusRejected
}
