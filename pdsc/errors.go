package pdsc

import "github.com/pkg/errors"

var (
	errNoMemoryName  = errors.New("pdsc: memory element has neither id nor name")
	errNoCore        = errors.New("pdsc: processor has no core at any level of the device hierarchy")
	errNoProcessor   = errors.New("pdsc: device declares no processor at any level")
	errNoDeviceName  = errors.New("pdsc: device element has no Dname or Dvariant")
	errNoFamilyName  = errors.New("pdsc: family element has no Dfamily")
	errMixedProcessors = errors.New("pdsc: cannot merge a single-processor spec with a named-processor list")
)
