// Package secure holds secret attribute values (passwords and the like)
// in memguard enclaves while an entry is being assembled.
//
// Values are encrypted at rest in memory, kept out of swap where mlock is
// available and wiped by memguard.Purge() on exit, including the interrupt
// path installed by the yamldap command.
//
//	buf, err := secure.NewSecureBufferFromString(password)
//	if err != nil {
//	    return err
//	}
//	defer buf.Destroy()
//
//	plain, err := buf.String() // only when rendering the record
package secure
