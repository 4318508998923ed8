package preference

// Cleanup rewrites every checklist attribute in a raw submission to the list
// of accepted names, before any attribute-level validation runs. Non-checklist
// keys pass through untouched (unknown keys included, downstream validation
// decides their fate). A checklist value that is not a sequence is dropped
// from the output entirely; an empty or fully rejected sequence stays as an
// empty list so clients can clear an attribute explicitly.
func Cleanup(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for key, value := range params {
		if !IsChecklistField(key) {
			out[key] = value
			continue
		}
		entries, ok := value.([]interface{})
		if !ok {
			continue
		}
		out[key] = rejectAttrs(entries)
	}
	return out
}

// rejectAttrs keeps only well-formed accepted entries: a mapping with exactly
// the keys "checked" and "name", checked strictly boolean true and name a
// string. Survivors are projected to their names in pass order.
func rejectAttrs(entries []interface{}) []string {
	accepted := []string{}
	for _, e := range entries {
		entry, ok := e.(map[string]interface{})
		if !ok || len(entry) != 2 {
			continue
		}
		checked, ok := entry["checked"].(bool)
		if !ok || !checked {
			continue
		}
		name, ok := entry["name"].(string)
		if !ok {
			continue
		}
		accepted = append(accepted, name)
	}
	return accepted
}
