package product

import "github.com/pkg/errors"

var errRemoteDelete = errors.New("remote image delete failed after the product was updated or removed")
