package user

// Fields maps non-nil changes onto stored column names, shared by the
// document and relational repositories.
func (c Changes) Fields() map[string]interface{} {
	out := make(map[string]interface{})
	set := func(key string, v *string) {
		if v != nil {
			out[key] = *v
		}
	}
	set("full_name", c.FullName)
	set("email", c.Email)
	set("phone", c.Phone)
	set("role_key", c.RoleKey)
	set("status", c.Status)
	set("signup_approval_id", c.SignupApprovalID)
	if c.Secret != nil {
		out["secret_hash"] = c.Secret.Hash
		out["secret_salt"] = c.Secret.Salt
		out["secret_iterations"] = c.Secret.Iterations
	}
	return out
}
