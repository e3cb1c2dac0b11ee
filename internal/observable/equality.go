package observable

// Equality decides whether a proposed value is the same as the current one.
// A Set whose value is equal to the current value is dropped silently.
type Equality[T any] func(current, next T) bool

// Equaler is implemented by value types that define their own structural
// equality, such as time.Time.
type Equaler[T any] interface {
	Equal(other T) bool
}

// Enum is the set of underlying kinds a Go enumeration is declared with:
//
//	type Direction int
//	const (North Direction = iota; East; South; West)
//
//	type Level string
//	const (LevelDebug Level = "debug"; LevelInfo Level = "info")
//
// Only defined types qualify; NewEnum rejects predeclared int or string.
type Enum interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~string
}

// Identity compares pointers, never the values they point to.
func Identity[E any](current, next *E) bool {
	return current == next
}

// Comparable compares with ==.
func Comparable[T comparable](current, next T) bool {
	return current == next
}

// Equatable delegates to the type's Equal method.
func Equatable[T Equaler[T]](current, next T) bool {
	return current.Equal(next)
}

// EnumCode compares the enumeration codes. A Go enum value is its code, so
// distinct constants always differ.
func EnumCode[T Enum](current, next T) bool {
	return current == next
}
