package server

import (
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/rpc/common"
)

func NewLVBServerAdapter() IRPCServerAdapter {
	return &lvbServerAdapterImpl{}
}

type lvbServerAdapterImpl struct{}

func (adapter *lvbServerAdapterImpl) Handle(req *common.Message, target *serverNamespace) *common.Message {
	if target == nil {
		return common.NewErrorResponse("handler: namespace is nil")
	}
	ns := target.ns

	switch req.MsgType {
	case common.MsgTLVBEnqueue:
		handle, res, err := target.grant(ldlm.ResName{ObjectID: req.Key, Class: ldlm.ResClass(req.Class)})
		if err != nil {
			return common.NewEnqueueResponse("", nil, err)
		}
		return common.NewEnqueueResponse(handle, res.LVB(), nil)

	case common.MsgTLVBGlimpse:
		lvb, err := ns.Glimpse(ldlm.ResName{ObjectID: req.Key, Class: ldlm.ResClass(req.Class)})
		return common.NewGlimpseResponse(lvb, err)

	case common.MsgTLVBRelease:
		return common.NewSuccessResponse(req.MsgType, target.release(req.Handle))

	case common.MsgTLVBFree:
		res, err := target.resource(req.Handle)
		if err == nil {
			ns.FreeLVB(res)
		}
		return common.NewSuccessResponse(req.MsgType, err)

	case common.MsgTLVBUpdate, common.MsgTLVBMerge:
		res, err := target.resource(req.Handle)
		if err != nil {
			return common.NewLVBResponse(req.MsgType, nil, err)
		}
		var attrs *backend.Attributes
		if req.MsgType == common.MsgTLVBMerge {
			attrs = &backend.Attributes{Size: req.Size, Mtime: req.Mtime}
		}
		err = ns.UpdateLVB(res, attrs)
		return common.NewLVBResponse(req.MsgType, res.LVB(), err)

	case common.MsgTLVBStats:
		return common.NewStatsResponse(ns.Stats())

	default:
		return common.NewErrorResponse(fmt.Sprintf("RPC LVBAdapter - Unsupported message type: %s", req.MsgType))
	}
}
