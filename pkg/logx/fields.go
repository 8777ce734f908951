package logx

import "context"

type fieldsKey struct{}

type field struct {
	key   string
	value string
}

// ContextWithField returns a copy of ctx carrying key=value, added to every entry logged with that context.
func ContextWithField(ctx context.Context, key, value string) context.Context {
	current := fieldsFromContext(ctx)
	fields := make([]field, 0, len(current)+1)
	fields = append(fields, current...)
	fields = append(fields, field{key: key, value: value})

	return context.WithValue(ctx, fieldsKey{}, fields)
}

func fieldsFromContext(ctx context.Context) []field {
	if ctx == nil {
		return nil
	}

	fields, _ := ctx.Value(fieldsKey{}).([]field)

	return fields
}
