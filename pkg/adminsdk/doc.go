/*
Package adminsdk provides a client for the adminusers identity API and the
request and response types shared with the server.

# Overview

Every call maps to one REST route. Non-2xx responses are returned as
*APIError carrying the status code and the messages from the
{"errors": [...]} body:

	client := adminsdk.NewClient("https://adminusers.internal", serviceToken)

	user, err := client.Authenticate(ctx, "jane", password)
	switch {
	case adminsdk.IsUnauthorized(err):
		// wrong password or locked account
	case err != nil:
		return err
	}

# Onboarding

An invite is created, the invitee sets a telephone number and password which
triggers a passcode SMS, and redeeming the passcode creates the account:

	inv, err := client.CreateServiceInvite(ctx, adminsdk.ServiceInviteRequest{Email: email})
	err = client.GenerateInviteOTP(ctx, code, adminsdk.InviteOTPRequest{
		TelephoneNumber: "+447700900000",
		Password:        password,
	})
	user, err := client.ValidateInviteOTP(ctx, code, passcode)

The invite code is the last path segment of the "self" link.
*/
package adminsdk
