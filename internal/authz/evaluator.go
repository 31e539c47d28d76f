package authz

// Evaluator answers permission questions for one session snapshot. It is a
// pure value: decisions depend only on the role and the granted set, never on
// I/O, so it is safe to consult while serving a request. The zero Evaluator
// denies everything.
type Evaluator struct {
	Role  Role
	Perms Set
}

// Has reports whether the session may exercise the given permission code.
// SUPER_ADMIN passes unconditionally; everyone else needs the code (in either
// dialect) in their granted set.
func (e Evaluator) Has(code Code) bool {
	if e.Role == RoleSuperAdmin {
		return true
	}
	return e.Perms.Contains(code)
}

// HasAny reports whether at least one of the codes is granted. An empty list
// grants nothing. Short-circuits on the first hit.
func (e Evaluator) HasAny(codes ...Code) bool {
	if e.Role == RoleSuperAdmin {
		return true
	}
	for _, code := range codes {
		if e.Perms.Contains(code) {
			return true
		}
	}
	return false
}

// HasAll reports whether every code is granted. An empty list is vacuously
// true, matching the observed call sites.
func (e Evaluator) HasAll(codes ...Code) bool {
	if e.Role == RoleSuperAdmin {
		return true
	}
	for _, code := range codes {
		if !e.Perms.Contains(code) {
			return false
		}
	}
	return true
}
