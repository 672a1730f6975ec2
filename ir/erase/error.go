package erase

import (
	"github.com/langforge/monomorph/ice"
	"github.com/langforge/monomorph/ir"
)

func raiseAssocFailure(sym ir.Symbol, arg ir.Type, loc ir.Location) {
	ice.Raise(ice.AssociatedTypeReductionFailure, loc.ICE(),
		"no reduction for associated type application during erasure",
		sym.String()+"["+arg.String()+"]")
}
