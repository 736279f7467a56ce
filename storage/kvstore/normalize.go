package kvstore

// legacyFields maps the camelCase names written by older clients to the canonical names.
var legacyFields = map[string]string{
	"teacherId":     "teacher_id",
	"moduleId":      "module_id",
	"studentId":     "student_id",
	"createdAt":     "created_at",
	"moduleTitle":   "module_title",
	"scheduledTime": "scheduled_time",
	"passwordHash":  "password_hash",
}

// normalize renames legacy fields in place. A canonical value, when present, wins.
// It is the only place aware of the old naming.
func normalize(rec Record) Record {
	for legacy, name := range legacyFields {
		v, ok := rec[legacy]
		if !ok {
			continue
		}
		if _, exists := rec[name]; !exists {
			rec[name] = v
		}
		delete(rec, legacy)
	}
	return rec
}
