package util

// Chunk splits collection into consecutive pieces of at most size elements.
// The pieces share collection's backing array but are capped, so appending
// to one never overwrites the next. A size below one yields the whole
// collection as a single piece.
func Chunk[T any](collection []T, size int) [][]T {
	if len(collection) == 0 {
		return nil
	}
	if size < 1 {
		size = len(collection)
	}
	ret := make([][]T, 0, (len(collection)+size-1)/size)
	for len(collection) > size {
		ret = append(ret, collection[:size:size])
		collection = collection[size:]
	}
	return append(ret, collection)
}
