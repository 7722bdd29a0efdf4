package domain

import "time"

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

type Restaurant struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Address     string    `json:"address"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Category struct {
	ID           int    `json:"id"`
	RestaurantID int    `json:"restaurant_id"`
	Name         string `json:"name"`
	SortOrder    int    `json:"sort_order"`
}

type MenuItem struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	CategoryID   int       `json:"category_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Price        float64   `json:"price"`
	ImageURL     string    `json:"image_url"`
	Available    bool      `json:"available"`
	CreatedAt    time.Time `json:"created_at"`
}

type Table struct {
	ID            int    `json:"id"`
	RestaurantID  int    `json:"restaurant_id"`
	Name          string `json:"name"`
	Seats         int    `json:"seats"`
	OrderingToken string `json:"ordering_token"`
}

type Booking struct {
	ID           int       `json:"id"`
	RestaurantID int       `json:"restaurant_id"`
	TableID      int       `json:"table_id"`
	GuestName    string    `json:"guest_name"`
	GuestPhone   string    `json:"guest_phone"`
	PartySize    int       `json:"party_size"`
	StartsAt     time.Time `json:"starts_at"`
}

type Order struct {
	ID           int         `json:"id"`
	RestaurantID int         `json:"restaurant_id"`
	TableID      int         `json:"table_id"`
	OrderType    string      `json:"order_type"`
	Status       string      `json:"status"`
	TotalAmount  float64     `json:"total_amount"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `json:"items"`
}

type OrderItem struct {
	MenuItemID int     `json:"menu_item_id"`
	Name       string  `json:"name"`
	Quantity   int     `json:"quantity"`
	Price      float64 `json:"price"`
	Notes      string  `json:"notes,omitempty"`
}

// CartItem is a working-order line. MenuItem is a snapshot taken at
// add time so a later menu edit cannot change a cart behind the guest's back.
type CartItem struct {
	MenuItem MenuItem `json:"menu_item"`
	Quantity int      `json:"quantity"`
	Notes    string   `json:"notes,omitempty"`
}

// Menu is the guest-facing view of a restaurant's offering.
type Menu struct {
	Restaurant Restaurant `json:"restaurant"`
	Categories []Category `json:"categories"`
	Items      []MenuItem `json:"items"`
}
