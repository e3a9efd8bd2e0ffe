package payment

type CreatePaymentConfigRequest struct {
	Name     string                 `json:"name" binding:"required"`
	Provider string                 `json:"provider" binding:"required"` // e.g. "coinpay"
	Config   map[string]interface{} `json:"config" binding:"required"`
	Enable   bool                   `json:"enable"`
}

type UpdatePaymentConfigRequest struct {
	Name   string                 `json:"name"`
	Config map[string]interface{} `json:"config"`
	Enable *bool                  `json:"enable"` // Pointer to allow false
}

type PaymentConfigResponse struct {
	ID        uint                   `json:"id"`
	UUID      string                 `json:"uuid"`
	Name      string                 `json:"name"`
	Provider  string                 `json:"provider"`
	Config    map[string]interface{} `json:"config"`
	Enable    bool                   `json:"enable"`
	CreatedAt string                 `json:"created_at"`
	UpdatedAt string                 `json:"updated_at"`
}
