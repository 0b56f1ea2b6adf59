package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/shubhavasar/storefront-backend/pkg/db/models"
)

// View is the API-facing shape of an order.
type View struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	Status      string          `json:"status"`
	Currency    string          `json:"currency"`
	AmountTotal decimal.Decimal `json:"amount_total"`
	ItemCount   int             `json:"item_count"`
	FullName    string          `json:"full_name"`
	Email       string          `json:"email"`
	Address     string          `json:"address"`
	City        string          `json:"city"`
	Province    string          `json:"province"`
	Country     string          `json:"country"`
	PostalCode  string          `json:"postal_code"`
	Items       []ItemView      `json:"items"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ItemView is one purchased line in an order view.
type ItemView struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Qty       int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Image     string          `json:"image,omitempty"`
	Color     string          `json:"color,omitempty"`
	Size      string          `json:"size,omitempty"`
}

// ToView maps the persistence model onto the API shape.
func ToView(order *models.Order) View {
	items := make([]ItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, ItemView{
			ProductID: item.ProductID,
			Name:      item.Name,
			Qty:       item.Qty,
			UnitPrice: item.UnitPrice,
			Image:     item.Image,
			Color:     item.Color,
			Size:      item.Size,
		})
	}
	return View{
		ID:          order.ID.String(),
		OrderNumber: order.OrderNumber,
		Status:      order.Status,
		Currency:    order.Currency,
		AmountTotal: order.AmountTotal,
		ItemCount:   order.ItemCount,
		FullName:    order.FullName,
		Email:       order.Email,
		Address:     order.Address,
		City:        order.City,
		Province:    order.Province,
		Country:     order.Country,
		PostalCode:  order.PostalCode,
		Items:       items,
		CreatedAt:   order.CreatedAt,
	}
}

// ToViews maps a list preserving order.
func ToViews(orders []models.Order) []View {
	views := make([]View, 0, len(orders))
	for i := range orders {
		views = append(views, ToView(&orders[i]))
	}
	return views
}
