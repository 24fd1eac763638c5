package models

// ShopProfile holds the single shop identity printed on bills.
type ShopProfile struct {
	ID       uint `gorm:"primaryKey"`
	ShopName string
	Address  string
	Mobile   string
	GSTNo    string
	Terms    string
	UPIID    string
}
