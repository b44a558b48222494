package postgres

import (
	"fmt"
	"time"
)

const (
	poolHealthCheckPeriod = time.Minute
	poolMaxConnLifetime   = time.Hour
	poolMaxConnIdleTime   = 30 * time.Minute
	dbPingTimeout         = 5 * time.Second

	errUserNotFound       = "user not found"
	errTaskNotFound       = "task not found"
	errRoleNotFound       = "role not found"
	errAssignmentNotFound = "role assignment not found"
	errResetTokenInvalid  = "invalid or expired token"
	errUploadNotFound     = "upload not found"

	errFailedParseDatabaseConfigFmt  = "failed to parse database config: %w"
	errFailedCreateConnectionPoolFmt = "failed to create connection pool: %w"
	errFailedPingDatabaseFmt         = "failed to ping database: %w"
	errFailedStartTransactionFmt     = "failed to start transaction: %w"
	errFailedCommitTransactionFmt    = "failed to commit transaction: %w"

	errFailedCreateUserFmt   = "failed to create user: %w"
	errFailedGetUserFmt      = "failed to get user: %w"
	errFailedListUsersFmt    = "failed to list users: %w"
	errFailedScanUserFmt     = "failed to scan user: %w"
	errIterateUsersFmt       = "error iterating users: %w"
	errFailedUpdateUserFmt   = "failed to update user: %w"
	errFailedDeleteUserFmt   = "failed to delete user: %w"
	errFailedRestoreUserFmt  = "failed to restore user: %w"
	errFailedQueryManagerFmt = "failed to query manager: %w"
	errFailedSetManagerFmt   = "failed to set manager: %w"

	errFailedCreateTaskFmt  = "failed to create task: %w"
	errFailedGetTaskFmt     = "failed to get task: %w"
	errFailedListTasksFmt   = "failed to list tasks: %w"
	errFailedScanTaskFmt    = "failed to scan task: %w"
	errIterateTasksFmt      = "error iterating tasks: %w"
	errFailedUpdateTaskFmt  = "failed to update task: %w"
	errFailedDeleteTaskFmt  = "failed to delete task: %w"
	errFailedRestoreTaskFmt = "failed to restore task: %w"

	errFailedCreateRoleFmt    = "failed to create role: %w"
	errFailedGetRoleFmt       = "failed to get role: %w"
	errFailedListRolesFmt     = "failed to list roles: %w"
	errFailedScanRoleFmt      = "failed to scan role: %w"
	errIterateRolesFmt        = "error iterating roles: %w"
	errFailedUpdateRoleFmt    = "failed to update role: %w"
	errFailedDeleteRoleFmt    = "failed to delete role: %w"
	errFailedAssignRoleFmt    = "failed to assign role: %w"
	errFailedUnassignRoleFmt  = "failed to unassign role: %w"
	errFailedListUserRolesFmt = "failed to list user roles: %w"

	errFailedCreateResetTokenFmt  = "failed to create reset token: %w"
	errFailedConsumeResetTokenFmt = "failed to consume reset token: %w"
	errFailedPurgeResetTokensFmt  = "failed to purge reset tokens: %w"

	errFailedCreateUploadFmt = "failed to create upload: %w"
	errFailedGetUploadFmt    = "failed to get upload: %w"
	errFailedListUploadsFmt  = "failed to list uploads: %w"
	errFailedScanUploadFmt   = "failed to scan upload: %w"
	errFailedDeleteUploadFmt = "failed to delete upload: %w"
)

var (
	errFailedParseDatabaseConfig  = func(err error) error { return fmt.Errorf(errFailedParseDatabaseConfigFmt, err) }
	errFailedCreateConnectionPool = func(err error) error { return fmt.Errorf(errFailedCreateConnectionPoolFmt, err) }
	errFailedPingDatabase         = func(err error) error { return fmt.Errorf(errFailedPingDatabaseFmt, err) }
	errFailedStartTransaction     = func(err error) error { return fmt.Errorf(errFailedStartTransactionFmt, err) }
	errFailedCommitTransaction    = func(err error) error { return fmt.Errorf(errFailedCommitTransactionFmt, err) }

	errFailedCreateUser   = func(err error) error { return fmt.Errorf(errFailedCreateUserFmt, err) }
	errFailedGetUser      = func(err error) error { return fmt.Errorf(errFailedGetUserFmt, err) }
	errFailedListUsers    = func(err error) error { return fmt.Errorf(errFailedListUsersFmt, err) }
	errFailedScanUser     = func(err error) error { return fmt.Errorf(errFailedScanUserFmt, err) }
	errIterateUsers       = func(err error) error { return fmt.Errorf(errIterateUsersFmt, err) }
	errFailedUpdateUser   = func(err error) error { return fmt.Errorf(errFailedUpdateUserFmt, err) }
	errFailedDeleteUser   = func(err error) error { return fmt.Errorf(errFailedDeleteUserFmt, err) }
	errFailedRestoreUser  = func(err error) error { return fmt.Errorf(errFailedRestoreUserFmt, err) }
	errFailedQueryManager = func(err error) error { return fmt.Errorf(errFailedQueryManagerFmt, err) }
	errFailedSetManager   = func(err error) error { return fmt.Errorf(errFailedSetManagerFmt, err) }

	errFailedCreateTask  = func(err error) error { return fmt.Errorf(errFailedCreateTaskFmt, err) }
	errFailedGetTask     = func(err error) error { return fmt.Errorf(errFailedGetTaskFmt, err) }
	errFailedListTasks   = func(err error) error { return fmt.Errorf(errFailedListTasksFmt, err) }
	errFailedScanTask    = func(err error) error { return fmt.Errorf(errFailedScanTaskFmt, err) }
	errIterateTasks      = func(err error) error { return fmt.Errorf(errIterateTasksFmt, err) }
	errFailedUpdateTask  = func(err error) error { return fmt.Errorf(errFailedUpdateTaskFmt, err) }
	errFailedDeleteTask  = func(err error) error { return fmt.Errorf(errFailedDeleteTaskFmt, err) }
	errFailedRestoreTask = func(err error) error { return fmt.Errorf(errFailedRestoreTaskFmt, err) }

	errFailedCreateRole    = func(err error) error { return fmt.Errorf(errFailedCreateRoleFmt, err) }
	errFailedGetRole       = func(err error) error { return fmt.Errorf(errFailedGetRoleFmt, err) }
	errFailedListRoles     = func(err error) error { return fmt.Errorf(errFailedListRolesFmt, err) }
	errFailedScanRole      = func(err error) error { return fmt.Errorf(errFailedScanRoleFmt, err) }
	errIterateRoles        = func(err error) error { return fmt.Errorf(errIterateRolesFmt, err) }
	errFailedUpdateRole    = func(err error) error { return fmt.Errorf(errFailedUpdateRoleFmt, err) }
	errFailedDeleteRole    = func(err error) error { return fmt.Errorf(errFailedDeleteRoleFmt, err) }
	errFailedAssignRole    = func(err error) error { return fmt.Errorf(errFailedAssignRoleFmt, err) }
	errFailedUnassignRole  = func(err error) error { return fmt.Errorf(errFailedUnassignRoleFmt, err) }
	errFailedListUserRoles = func(err error) error { return fmt.Errorf(errFailedListUserRolesFmt, err) }

	errFailedCreateResetToken  = func(err error) error { return fmt.Errorf(errFailedCreateResetTokenFmt, err) }
	errFailedConsumeResetToken = func(err error) error { return fmt.Errorf(errFailedConsumeResetTokenFmt, err) }
	errFailedPurgeResetTokens  = func(err error) error { return fmt.Errorf(errFailedPurgeResetTokensFmt, err) }

	errFailedCreateUpload = func(err error) error { return fmt.Errorf(errFailedCreateUploadFmt, err) }
	errFailedGetUpload    = func(err error) error { return fmt.Errorf(errFailedGetUploadFmt, err) }
	errFailedListUploads  = func(err error) error { return fmt.Errorf(errFailedListUploadsFmt, err) }
	errFailedScanUpload   = func(err error) error { return fmt.Errorf(errFailedScanUploadFmt, err) }
	errFailedDeleteUpload = func(err error) error { return fmt.Errorf(errFailedDeleteUploadFmt, err) }
)
