package validation

type OrderLineRequest struct {
	ProductPublicID string  `json:"product_public_id" validate:"required"`
	Quantity        int     `json:"quantity" validate:"required,gt=0"`
	PricePerUnit    float64 `json:"price_per_unit" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	ContactName     string             `json:"contact_name" validate:"required,max=255"`
	ContactEmail    string             `json:"contact_email" validate:"required,email"`
	DeliveryAddress string             `json:"delivery_address" validate:"required"`
	Lines           []OrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type ShipOrderRequest struct {
	TrackingNumber   string `json:"tracking_number"`
	ShippingProvider string `json:"shipping_provider"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type CreateProductRequest struct {
	Name             string  `json:"name" validate:"required,max=255"`
	Quantity         int     `json:"quantity" validate:"gte=0"`
	CurrentPrice     float64 `json:"current_price" validate:"gte=0"`
	CategoryPublicID string  `json:"category_public_id"`
}

type UpdateProductRequest struct {
	Name             *string  `json:"name" validate:"omitempty,max=255"`
	CurrentPrice     *float64 `json:"current_price" validate:"omitempty,gte=0"`
	CategoryPublicID *string  `json:"category_public_id"`
}

type CategoryRequest struct {
	Name        string  `json:"name" validate:"required,max=100"`
	Description *string `json:"description"`
}
