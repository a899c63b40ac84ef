package services

import "bank-backend/internal/utils"

var (
	ErrUserNotFound        = utils.NewNotFoundError("user not found")
	ErrEmailTaken          = utils.NewConflictError("email already registered")
	ErrNationalIDTaken     = utils.NewConflictError("national id already registered")
	ErrInvalidCredentials  = utils.NewUnauthorizedError("invalid credentials")
	ErrOptimisticLock      = utils.NewConflictError("data has been modified by another user, please refresh and try again")
	ErrUserOwnsAccounts    = utils.NewBadRequestError("cannot remove user with accounts")
	ErrRoleChangeForbidden = utils.NewForbiddenError("only admins can change roles")

	ErrAccountNotFound       = utils.NewNotFoundError("account not found")
	ErrAccountNumberTaken    = utils.NewConflictError("account number already exists")
	ErrAccountInactive       = utils.NewBadRequestError("account is inactive")
	ErrAccountAlreadyClosed  = utils.NewBadRequestError("account is already inactive")
	ErrAccountHasBalance     = utils.NewBadRequestError("cannot remove account with balance")
	ErrImmutableAccountField = utils.NewBadRequestError("account number and owner cannot be changed")
	ErrInvalidAccountType    = utils.NewBadRequestError("account type must be checking, savings or investment")
	ErrNegativeBalance       = utils.NewBadRequestError("initial balance cannot be negative")
	ErrBalancePrecision      = utils.NewBadRequestError("initial balance must have at most 2 decimal places")
	ErrAccountAccessDenied   = utils.NewForbiddenError("you do not have access to this account")

	ErrTransactionNotFound     = utils.NewNotFoundError("transaction not found")
	ErrInvalidAmount           = utils.NewBadRequestError("amount must be greater than zero")
	ErrAmountPrecision         = utils.NewBadRequestError("amount must have at most 2 decimal places")
	ErrSameAccountTransfer     = utils.NewBadRequestError("source and destination accounts must be different")
	ErrInsufficientFunds       = utils.NewBadRequestError("insufficient funds")
	ErrDescriptionTooLong      = utils.NewBadRequestError("description cannot exceed 200 characters")
	ErrTransactionNotPending   = utils.NewBadRequestError("only pending transactions can be cancelled")
	ErrTransactionAccessDenied = utils.NewForbiddenError("you do not have access to this transaction")
	ErrInvalidDateRange        = utils.NewBadRequestError("start date must be before end date")
	ErrUnsupportedFormat       = utils.NewBadRequestError("unsupported export format")
)
