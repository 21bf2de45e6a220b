package types

type Side string

const (
	SideTypeBuy  Side = "BUY"
	SideTypeSell Side = "SELL"
)

func (s Side) String() string {
	return string(s)
}
