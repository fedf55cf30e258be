package repo

var (
	IsMongoDuplicate = isMongoDuplicate
	IsSQLiteUnique   = isSQLiteUnique
	IsPgUnique       = isPgUnique
)
