package server

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/rpc/common"
)

func NewObjectServerAdapter() IRPCServerAdapter {
	return &objectServerAdapterImpl{}
}

type objectServerAdapterImpl struct{}

func (adapter *objectServerAdapterImpl) Handle(req *common.Message, target *serverNamespace) *common.Message {
	if target == nil || target.objects == nil {
		return common.NewErrorResponse("handler: namespace has no object backend")
	}
	objects := target.objects

	switch req.MsgType {
	case common.MsgTObjPut:
		attrs, err := backend.DecodeAttributes(req.Value)
		if err != nil {
			return common.NewSuccessResponse(req.MsgType, ldlm.WrapError(ldlm.RetCInvalidRequest, "invalid attributes", err))
		}
		return common.NewSuccessResponse(req.MsgType, objectErr(objects.PutAttributes(req.Key, attrs)))

	case common.MsgTObjDelete:
		return common.NewSuccessResponse(req.MsgType, objectErr(objects.DeleteObject(req.Key)))

	case common.MsgTObjStat:
		attrs, err := objects.LookupAttributes(req.Key)
		if errors.Is(err, backend.ErrNotFound) {
			return common.NewObjStatResponse(backend.Attributes{}, false, nil)
		}
		return common.NewObjStatResponse(attrs, err == nil, objectErr(err))

	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC ObjectAdapter - Unsupported message type: %s", req.MsgType))
	}
}

// objectErr maps backend errors to return codes a client can act on.
func objectErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, backend.ErrInvalidObjectID):
		return ldlm.WrapError(ldlm.RetCInvalidRequest, "invalid object id", err)
	case errors.Is(err, backend.ErrNotFound):
		return ldlm.WrapError(ldlm.RetCObjectNotFound, "object not found", err)
	default:
		return ldlm.WrapError(ldlm.RetCBackendError, "object backend", err)
	}
}
