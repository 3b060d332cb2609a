package stage

import "errors"

var errDecodedOutputsNotObject = errors.New("stage: cached outputs file did not decode to an object")
