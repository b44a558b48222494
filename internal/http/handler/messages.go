package handler

const (
	jsonKeyError   = "error"
	jsonKeyMessage = "message"

	msgContentTypeJSONRequired = "Content-Type must be application/json"
	msgInvalidRequestBody      = "invalid request body"
	msgMissingIDParam          = "id parameter required"
	msgInvalidIDParam          = "invalid id parameter"

	msgInvalidCredentials  = "invalid email or password"
	msgEmailAlreadyExists  = "email already exists"
	msgPasswordProcessFail = "failed to process password"
	msgGenerateTokenFail   = "failed to generate token"
	msgAccountDisabled     = "account is disabled"
	msgPasswordChanged     = "password changed successfully"
	msgResetRequested      = "if the email exists, a reset link has been sent"
	msgPasswordResetDone   = "password has been reset"
	msgCurrentPasswordBad  = "current password is incorrect"

	msgPermissionDenied  = "permission denied"
	msgManagerNotFound   = "manager not found"
	msgCannotDeleteSelf  = "cannot delete your own account"
	msgInvalidPermission = "invalid permissions document"

	msgFileRequired   = "no file provided. Use 'file' as the form-data field name"
	msgFileTooLarge   = "file exceeds the maximum upload size"
	msgUploadFailed   = "failed to store file"
	msgDownloadFailed = "failed to generate download link"
	msgTrashEmptied   = "trash emptied"
)
