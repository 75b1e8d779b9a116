package rpc

import (
	"errors"

	"ecoledger/internal/gateway/entity"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

func toConnectError(log zerolog.Logger, procedure string, err error) error {
	switch {
	case errors.Is(err, entity.ErrInvalidInput), errors.Is(err, entity.ErrUnknownCategory):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, entity.ErrUserNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		log.Error().Err(err).
			Str("op", entity.Op(err)).
			Str("procedure", procedure).
			Msg("rpc failed")
		return connect.NewError(connect.CodeInternal, errors.New("server error"))
	}
}
