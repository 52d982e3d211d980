package models

import "github.com/google/uuid"

// CreateContractRequest carries the scalar lease fields. Uploaded ID
// photos and the lease PDF travel as multipart files and reach the
// service as stored path strings.
type CreateContractRequest struct {
	RoomID        uuid.UUID `json:"roomId" form:"room_id" binding:"required"`
	FullName      string    `json:"fullName" form:"full_name" binding:"required"`
	Phone         string    `json:"phone" form:"phone" binding:"required"`
	StartDate     string    `json:"startDate" form:"start_date" binding:"required"`
	EndDate       string    `json:"endDate" form:"end_date" binding:"required"`
	DepositAmount float64   `json:"depositAmount" form:"deposit_amount"`
	RentAmount    float64   `json:"rentAmount" form:"rent_amount"`
	Notes         string    `json:"notes" form:"notes"`
}

// UpdateContractRequest carries the editable contract fields. A
// non-empty Password of at least six characters (after trimming)
// rotates the tenant's portal secret.
type UpdateContractRequest struct {
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	DepositAmount float64 `json:"depositAmount"`
	RentAmount    float64 `json:"rentAmount"`
	Notes         string  `json:"notes"`
	Status        string  `json:"status"`
	Password      string  `json:"password"`
}

// CreateContractResult is returned once per lease: the plaintext secret
// is not retrievable afterwards except by parsing the notes marker.
type CreateContractResult struct {
	ContractID uuid.UUID `json:"contractId"`
	Password   string    `json:"password"`
}

// InvoiceItemRequest is one line of a new invoice.
type InvoiceItemRequest struct {
	ServiceType     string   `json:"serviceType"`
	PreviousReading *float64 `json:"previousReading"`
	CurrentReading  *float64 `json:"currentReading"`
	UnitPrice       float64  `json:"unitPrice"`
	Amount          float64  `json:"amount"`
}

// CreateInvoiceRequest creates one invoice plus its line items.
// BillingPeriod is optional; when absent it is derived from the due
// date, falling back to the current year-month.
type CreateInvoiceRequest struct {
	ContractID    uuid.UUID            `json:"contractId" binding:"required"`
	Type          string               `json:"type"`
	BillingPeriod string               `json:"billingPeriod"`
	DueDate       string               `json:"dueDate"`
	Items         []InvoiceItemRequest `json:"items"`
	Notes         string               `json:"notes"`
	TotalAmount   float64              `json:"totalAmount"`
	RoomRent      float64              `json:"roomRent"`
}

// UpdateInvoiceStatusRequest flips an invoice between Unpaid and Paid.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TenantLoginRequest authenticates a tenant portal session. Username is
// the tenant's phone number.
type TenantLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TenantLoginResult carries the issued portal token.
type TenantLoginResult struct {
	Token    string    `json:"token"`
	TenantID uuid.UUID `json:"tenantId"`
	FullName string    `json:"fullName"`
}

// CreateHouseRequest registers a boarding house.
type CreateHouseRequest struct {
	Name        string `json:"name" binding:"required"`
	Address     string `json:"address"`
	Description string `json:"description"`
}

// CreateRoomRequest registers a room under a house.
type CreateRoomRequest struct {
	HouseID    uuid.UUID `json:"houseId" binding:"required"`
	RoomNumber string    `json:"roomNumber" binding:"required"`
	Floor      int       `json:"floor"`
	AreaM2     float64   `json:"areaM2"`
	BaseRent   float64   `json:"baseRent"`
	Facilities string    `json:"facilities"`
}

// CreateMaintenanceRequest files a maintenance request for the caller's
// actively leased room.
type CreateMaintenanceRequest struct {
	RoomID      uuid.UUID `json:"roomId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
}

// ResolveMaintenanceRequest closes a request from the back office.
type ResolveMaintenanceRequest struct {
	Status         string `json:"status" binding:"required"`
	ResolutionNote string `json:"resolutionNote"`
}
