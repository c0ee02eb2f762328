package dto

// ProductInput 新建或更新商品
type ProductInput struct {
	Name        string  `json:"name" binding:"required,max=200"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"gt=0"`
	Stock       int     `json:"stock" binding:"gte=0"`
}

// OrderItemInput 下单条目
type OrderItemInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// CheckoutRequest 下单
type CheckoutRequest struct {
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	CreditApplied float64          `json:"credit_applied" binding:"gte=0"`
	PaymentMethod string           `json:"payment_method"`
}
