package wizard

import "errors"

// Validation errors for the interactive wizard.
var (
	errCompartmentRequired = errors.New("compartment OCID is required")
	errOCIDInvalid         = errors.New("must be an OCID (ocid1.<type>.<realm>...)")
	errPathRequired        = errors.New("path is required")
	errSizesRequired       = errors.New("select at least one OCPU size")
)
