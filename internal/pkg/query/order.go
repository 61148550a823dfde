package query

// Direction represents ORDER BY direction.
type Direction int

const (
	// Asc represents ascending order.
	Asc Direction = iota
	// Desc represents descending order.
	Desc
)

func (d Direction) String() string {
	if d == Desc {
		return "DESC"
	}
	return "ASC"
}

// Order is a single ORDER BY term. Expr may be a column or an expression.
type Order struct {
	Expr string
	Dir  Direction
}

func (o Order) String() string {
	return o.Expr + " " + o.Dir.String()
}
