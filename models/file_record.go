package models

// FileRecord is one row in the files table: the metadata half of a stored
// file. The bytes live on disk under <root>/<user_upload>/<hash_id>.<extension>;
// the record and the blob may transiently disagree during partial failures and
// the remove service drives them back into agreement.
type FileRecord struct {
	// HashID is the SHA-1 hex digest of the original file name without its
	// extension. It is recomputable from the name alone, so the same base
	// name always maps to the same row for a given uploader.
	HashID     string `gorm:"column:hash_id;primaryKey;size:40" json:"hash_id"`
	FileName   string `gorm:"column:file_name;size:255;not null" json:"file_name"`
	Extension  string `gorm:"column:extension;size:32;not null" json:"extension"`
	UserUpload string `gorm:"column:user_upload;primaryKey;size:64" json:"user_upload"`
	// UploadTime is minutes since the Unix epoch, not seconds. Retention
	// arithmetic happens at minute resolution throughout.
	UploadTime int64  `gorm:"column:upload_time" json:"upload_time"`
	TargetUser string `gorm:"column:target_user;size:64;not null" json:"target_user"`
}

// TableName keeps the historical table name.
func (FileRecord) TableName() string {
	return "files"
}
