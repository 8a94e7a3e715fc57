package requestdata

import (
	"context"

	"github.com/google/uuid"
)

type requestDataKeyType struct{}

var requestDataKey = requestDataKeyType{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	val := ctx.Value(requestDataKey)
	if rd, ok := val.(*RequestData); ok {
		return rd
	}
	return nil
}

// RequestData is the authenticated identity attached to every request
// after the auth middleware runs. MerchantID scopes all tenant reads
// and writes.
type RequestData struct {
	TokenString string
	UserID      uuid.UUID
	MerchantID  uuid.UUID
	Role        string
}
